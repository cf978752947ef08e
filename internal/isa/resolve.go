package isa

import (
	"github.com/rvtools/rvenc/internal/encoding"
)

// Resolved couples an instruction definition with everything computed from
// its encoding. All of it is value-like and immutable once built; each
// instruction resolves independently of every other.
type Resolved struct {
	Instruction Instruction              `json:"instruction"`
	VariantKey  string                   `json:"variant_key,omitempty"`
	Width       int                      `json:"width"`
	Format      encoding.FormatTag       `json:"format"`
	Fields      []encoding.ResolvedField `json:"fields"`
	Layout      []encoding.LayoutSegment `json:"layout"`
	Fixed       encoding.FixedSlices     `json:"fixed"`
	Diags       encoding.Diagnostics     `json:"diagnostics"`
}

// ResolveInstruction runs the full per-instruction computation: variant
// selection, field resolution, format classification and layout building.
func ResolveInstruction(inst Instruction) Resolved {
	match, vars, key := inst.Encoding.Variant()

	specs := make([]encoding.VariableSpec, len(vars))
	for i, v := range vars {
		specs[i] = encoding.VariableSpec{Name: v.Name, Location: v.Location}
	}

	res := encoding.Resolve(match, specs)
	width := encoding.WidthOf(match)

	return Resolved{
		Instruction: inst,
		VariantKey:  key,
		Width:       width,
		Format:      encoding.ClassifyFormat(specs),
		Fields:      res.Fields,
		Layout:      encoding.BuildLayout(res.Fields, width),
		Fixed:       res.Fixed,
		Diags:       res.Diags,
	}
}
