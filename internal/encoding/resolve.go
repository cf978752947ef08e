package encoding

import (
	"sort"
)

// FieldKind classifies a resolved field or layout segment.
type FieldKind string

const (
	KindConstant FieldKind = "constant"
	KindVariable FieldKind = "variable"
	KindGap      FieldKind = "gap"
)

// VariableSpec is a named variable field with its raw bit-location
// expression, as declared in an instruction definition.
type VariableSpec struct {
	Name     string
	Location string
}

// ResolvedField is one entry of an instruction's field inventory: either a
// declared variable field or a constant run extracted from the match
// pattern. Range spans the field's outermost bits; for a multi-segment
// variable field Width is the sum of the segment widths, not the width of
// Range, since the field only occupies the listed bits.
type ResolvedField struct {
	Label    string     `json:"label"`
	Range    BitRange   `json:"range"`
	Width    int        `json:"width"`
	Kind     FieldKind  `json:"kind"`
	Segments []BitRange `json:"segments"`
}

// MalformedPiece records a location piece that could not be parsed.
type MalformedPiece struct {
	Variable string `json:"variable"`
	Piece    string `json:"piece"`
}

// Diagnostics reports data-quality problems found while resolving an
// encoding. Resolution itself is lenient; these exist so callers can tell
// "zero fields because none were declared" apart from "fields were declared
// but unusable".
type Diagnostics struct {
	// UnsupportedWidth is set when a match string was present but not 16
	// or 32 characters long.
	UnsupportedWidth bool `json:"unsupported_width,omitempty"`

	// MalformedPieces lists location pieces dropped by the parser.
	MalformedPieces []MalformedPiece `json:"malformed_pieces,omitempty"`

	// DroppedVariables lists variable fields that yielded no usable
	// ranges at all and were dropped from the inventory.
	DroppedVariables []string `json:"dropped_variables,omitempty"`
}

// Clean reports whether resolution encountered no data-quality problems.
func (d Diagnostics) Clean() bool {
	return !d.UnsupportedWidth && len(d.MalformedPieces) == 0 && len(d.DroppedVariables) == 0
}

// Resolution is the complete output of resolving one encoding variant.
type Resolution struct {
	Fields  []ResolvedField `json:"fields"`
	Pattern MatchPattern    `json:"-"`
	Fixed   FixedSlices     `json:"fixed"`
	Diags   Diagnostics     `json:"diagnostics"`
}

// Resolve combines a match string and a variable-field list into the full
// field inventory for one instruction: one Variable field per usable spec
// plus one Constant field per maximal run of fixed bits in the pattern,
// sorted descending by the field's high bit (stable, so same-high entries
// keep their relative order).
//
// The result may legitimately not cover every bit, and inconsistent source
// data may produce overlapping fields; completeness is BuildLayout's
// concern, and overlap detection is left to the policy layer.
func Resolve(match string, vars []VariableSpec) Resolution {
	var res Resolution

	res.Pattern = ParseMatchPattern(match)
	if res.Pattern == nil && match != "" {
		res.Diags.UnsupportedWidth = true
	}
	res.Fixed = res.Pattern.Fixed()

	for _, v := range vars {
		ranges, malformed := ParseLocation(v.Location)
		for _, piece := range malformed {
			res.Diags.MalformedPieces = append(res.Diags.MalformedPieces, MalformedPiece{
				Variable: v.Name,
				Piece:    piece,
			})
		}
		if len(ranges) == 0 {
			res.Diags.DroppedVariables = append(res.Diags.DroppedVariables, v.Name)
			continue
		}

		high, low, width := ranges[0].High, ranges[0].Low, 0
		for _, r := range ranges {
			if r.High > high {
				high = r.High
			}
			if r.Low < low {
				low = r.Low
			}
			width += r.Width()
		}

		res.Fields = append(res.Fields, ResolvedField{
			Label:    v.Name,
			Range:    BitRange{High: high, Low: low},
			Width:    width,
			Kind:     KindVariable,
			Segments: ranges,
		})
	}

	res.Fields = append(res.Fields, constantRuns(res.Pattern)...)

	sort.SliceStable(res.Fields, func(i, j int) bool {
		return res.Fields[i].Range.High > res.Fields[j].Range.High
	})

	return res
}

// constantRuns scans the pattern from the most significant bit and emits
// one Constant field per maximal run of non-don't-care symbols.
func constantRuns(p MatchPattern) []ResolvedField {
	w := len(p)
	var runs []ResolvedField

	for i := 0; i < w; {
		if p[i] == DontCare {
			i++
			continue
		}
		j := i
		for j < w && p[j] != DontCare {
			j++
		}
		high, low := w-1-i, w-j
		runs = append(runs, ResolvedField{
			Label:    constantRole(high, low) + "=" + string(p[i:j]),
			Range:    BitRange{High: high, Low: low},
			Width:    j - i,
			Kind:     KindConstant,
			Segments: []BitRange{{High: high, Low: low}},
		})
		i = j
	}

	return runs
}

// constantRole names a constant run by its exact span. Only the three
// canonical 32-bit spans get a role; anything else is a plain constant.
func constantRole(high, low int) string {
	switch {
	case high == 31 && low == 25:
		return "funct7"
	case high == 14 && low == 12:
		return "funct3"
	case high == 6 && low == 0:
		return "opcode"
	default:
		return "const"
	}
}

// WidthOf derives the instruction width from a match string: 16 when the
// string is exactly 16 characters, otherwise 32.
func WidthOf(match string) int {
	if len(match) == 16 {
		return 16
	}
	return 32
}
