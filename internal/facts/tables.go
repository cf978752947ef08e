package facts

import (
	"sort"

	"github.com/rvtools/rvenc/internal/encoding"
	"github.com/rvtools/rvenc/internal/isa"
)

// Tables is the relational fact model of a resolved corpus. Each slice is
// one relation with flat rows; this is the interchange surface between the
// resolver, the schema validator, the policy engine and the site generator.
type Tables struct {
	Instructions []InstructionRow `json:"instructions"`
	Fields       []FieldRow       `json:"fields"`
	Segments     []SegmentRow     `json:"segments"`
	Diagnostics  []DiagnosticRow  `json:"diagnostics"`
}

type InstructionRow struct {
	Name       string `json:"name"`
	File       string `json:"file"`
	Extension  string `json:"extension,omitempty"`
	Width      int    `json:"width"`
	Format     string `json:"format"`
	VariantKey string `json:"variant_key,omitempty"`
	Opcode     string `json:"opcode,omitempty"`
	Funct3     string `json:"funct3,omitempty"`
	Funct7     string `json:"funct7,omitempty"`
}

// FieldRow is one entry of an instruction's field inventory.
type FieldRow struct {
	Instruction string `json:"instruction"`
	File        string `json:"file"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	High        int    `json:"high"`
	Low         int    `json:"low"`
	Width       int    `json:"width"`
}

// SegmentRow is one cell of an instruction's width-tiling layout,
// including gap cells.
type SegmentRow struct {
	Instruction string `json:"instruction"`
	File        string `json:"file"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	High        int    `json:"high"`
	Low         int    `json:"low"`
	Width       int    `json:"width"`
}

// DiagnosticRow records a data-quality problem found during resolution.
// Kinds: malformed_location, dropped_variable, unsupported_width.
type DiagnosticRow struct {
	Instruction string `json:"instruction"`
	File        string `json:"file"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail,omitempty"`
}

// BuildTables flattens resolved instructions into fact tables, ordered by
// instruction name so output is deterministic.
func BuildTables(resolved []isa.Resolved) Tables {
	sorted := make([]isa.Resolved, len(resolved))
	copy(sorted, resolved)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Instruction.Name < sorted[j].Instruction.Name
	})

	var t Tables
	for _, r := range sorted {
		name := r.Instruction.Name
		file := r.Instruction.SourceFile

		t.Instructions = append(t.Instructions, InstructionRow{
			Name:       name,
			File:       file,
			Extension:  r.Instruction.Extension,
			Width:      r.Width,
			Format:     string(r.Format),
			VariantKey: r.VariantKey,
			Opcode:     r.Fixed.Opcode,
			Funct3:     r.Fixed.Funct3,
			Funct7:     r.Fixed.Funct7,
		})

		for _, f := range r.Fields {
			t.Fields = append(t.Fields, FieldRow{
				Instruction: name,
				File:        file,
				Label:       f.Label,
				Kind:        string(f.Kind),
				High:        f.Range.High,
				Low:         f.Range.Low,
				Width:       f.Width,
			})
		}

		for _, s := range r.Layout {
			t.Segments = append(t.Segments, SegmentRow{
				Instruction: name,
				File:        file,
				Label:       s.Label,
				Kind:        string(s.Kind),
				High:        s.Range.High,
				Low:         s.Range.Low,
				Width:       s.Width,
			})
		}

		t.Diagnostics = append(t.Diagnostics, diagnosticRows(name, file, r.Diags)...)
	}

	return t
}

func diagnosticRows(name, file string, d encoding.Diagnostics) []DiagnosticRow {
	var rows []DiagnosticRow
	if d.UnsupportedWidth {
		rows = append(rows, DiagnosticRow{Instruction: name, File: file, Kind: "unsupported_width"})
	}
	for _, p := range d.MalformedPieces {
		rows = append(rows, DiagnosticRow{
			Instruction: name,
			File:        file,
			Kind:        "malformed_location",
			Detail:      p.Variable + ": " + p.Piece,
		})
	}
	for _, v := range d.DroppedVariables {
		rows = append(rows, DiagnosticRow{
			Instruction: name,
			File:        file,
			Kind:        "dropped_variable",
			Detail:      v,
		})
	}
	return rows
}
