package isa

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/rvtools/rvenc/internal/encoding"
)

func TestResolveInstructionRType(t *testing.T) {
	var inst Instruction
	if err := yaml.Unmarshal([]byte(addYAML), &inst); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	r := ResolveInstruction(inst)
	if r.Width != 32 {
		t.Fatalf("expected width 32, got %d", r.Width)
	}
	if r.Format != encoding.FormatR {
		t.Fatalf("expected format R, got %q", r.Format)
	}
	if r.Fixed.Opcode != "0110011" || r.Fixed.Funct3 != "000" || r.Fixed.Funct7 != "0000000" {
		t.Fatalf("unexpected fixed slices %+v", r.Fixed)
	}
	if !r.Diags.Clean() {
		t.Fatalf("expected clean diagnostics, got %+v", r.Diags)
	}

	total := 0
	for _, s := range r.Layout {
		total += s.Width
	}
	if total != 32 {
		t.Fatalf("layout widths sum to %d, want 32: %+v", total, r.Layout)
	}
}

func TestResolveInstructionVariantSelection(t *testing.T) {
	var inst Instruction
	if err := yaml.Unmarshal([]byte(variantYAML), &inst); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	r := ResolveInstruction(inst)
	if r.VariantKey != "RV32" {
		t.Fatalf("expected RV32 variant resolved, got %q", r.VariantKey)
	}

	var shamt bool
	for _, f := range r.Fields {
		if f.Label == "shamt" && f.Range == (encoding.BitRange{High: 24, Low: 20}) {
			shamt = true
		}
	}
	if !shamt {
		t.Fatalf("expected RV32 shamt field at 24-20, got %+v", r.Fields)
	}
}

func TestResolveInstructionNoEncoding(t *testing.T) {
	inst := Instruction{Name: "bare"}
	r := ResolveInstruction(inst)
	if len(r.Layout) != 1 || r.Layout[0].Kind != encoding.KindGap {
		t.Fatalf("expected a single full-width gap, got %+v", r.Layout)
	}
	if r.Width != 32 {
		t.Fatalf("expected default width 32, got %d", r.Width)
	}
}
