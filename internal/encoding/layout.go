package encoding

import (
	"sort"
	"strings"
)

// LayoutSegment is one cell of the final width-tiling representation. The
// ordered segments of a layout partition [0, W-1] exactly: no overlaps, no
// uncovered bits. Gap segments carry an empty label.
type LayoutSegment struct {
	Label string    `json:"label"`
	Range BitRange  `json:"range"`
	Width int       `json:"width"`
	Kind  FieldKind `json:"kind"`
}

// BuildLayout turns a field inventory into a layout that exactly tiles
// [0, width-1]. Every field is expanded into one segment per contained
// range, so a two-segment variable field becomes two independent segments
// sharing the same label; uncovered spans are filled with Gap segments.
//
// Overlapping input segments (malformed source data) would call for a
// negative-width gap; such insertions are silently skipped rather than
// treated as an error.
func BuildLayout(fields []ResolvedField, width int) []LayoutSegment {
	var segs []LayoutSegment
	for _, f := range fields {
		for _, r := range f.Segments {
			segs = append(segs, LayoutSegment{
				Label: f.Label,
				Range: r,
				Width: r.Width(),
				Kind:  f.Kind,
			})
		}
	}

	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].Range.High > segs[j].Range.High
	})

	out := make([]LayoutSegment, 0, len(segs)+2)
	cursor := width - 1
	for _, s := range segs {
		if cursor > s.Range.High {
			out = append(out, gapSegment(s.Range.High+1, cursor))
		}
		out = append(out, s)
		cursor = s.Range.Low - 1
	}
	if cursor >= 0 {
		out = append(out, gapSegment(0, cursor))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.High > out[j].Range.High
	})

	return out
}

func gapSegment(low, high int) LayoutSegment {
	return LayoutSegment{
		Range: BitRange{High: high, Low: low},
		Width: high - low + 1,
		Kind:  KindGap,
	}
}

// RenderEntry is the shape the diagram renderer consumes: a display name
// and a bit count per cell.
type RenderEntry struct {
	Name string `json:"name"`
	Bits int    `json:"bits"`
}

// RenderEntries flattens a layout for the renderer. Constant labels are
// stripped to their literal-bit portion (the part after "="); stripping is
// this package's responsibility, not the renderer's.
func RenderEntries(segs []LayoutSegment) []RenderEntry {
	out := make([]RenderEntry, 0, len(segs))
	for _, s := range segs {
		name := s.Label
		if s.Kind == KindConstant {
			if _, lit, found := strings.Cut(name, "="); found {
				name = lit
			}
		}
		out = append(out, RenderEntry{Name: name, Bits: s.Width})
	}
	return out
}
