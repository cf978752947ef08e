package facts

import (
	"strings"
	"testing"

	"github.com/rvtools/rvenc/internal/isa"
)

func resolvedFixture(t *testing.T) []isa.Resolved {
	t.Helper()
	match := "0000000" + strings.Repeat("-", 10) + "000" + strings.Repeat("-", 5) + "0110011"
	add := isa.Instruction{
		Name:      "add",
		Extension: "I",
		Encoding: isa.Encoding{
			Match: match,
			Variables: []isa.VariableDef{
				{Name: "xs2", Location: "24-20"},
				{Name: "xs1", Location: "19-15"},
				{Name: "xd", Location: "11-7"},
			},
		},
		SourceFile: "add.yaml",
	}
	broken := isa.Instruction{
		Name: "bogus",
		Encoding: isa.Encoding{
			Match:     match,
			Variables: []isa.VariableDef{{Name: "xd", Location: "zap"}},
		},
		SourceFile: "bogus.yaml",
	}
	return []isa.Resolved{isa.ResolveInstruction(broken), isa.ResolveInstruction(add)}
}

func TestBuildTablesOrderAndRows(t *testing.T) {
	tables := BuildTables(resolvedFixture(t))

	if len(tables.Instructions) != 2 {
		t.Fatalf("expected 2 instruction rows, got %+v", tables.Instructions)
	}
	// Sorted by name regardless of input order.
	if tables.Instructions[0].Name != "add" || tables.Instructions[1].Name != "bogus" {
		t.Fatalf("rows not sorted by name: %+v", tables.Instructions)
	}

	add := tables.Instructions[0]
	if add.Format != "R" || add.Width != 32 || add.Opcode != "0110011" || add.Funct7 != "0000000" {
		t.Fatalf("unexpected add row %+v", add)
	}

	var addSegWidth int
	for _, s := range tables.Segments {
		if s.Instruction == "add" {
			addSegWidth += s.Width
		}
	}
	if addSegWidth != 32 {
		t.Fatalf("add segments sum to %d, want 32", addSegWidth)
	}
}

func TestBuildTablesDiagnostics(t *testing.T) {
	tables := BuildTables(resolvedFixture(t))

	kinds := make(map[string]int)
	for _, d := range tables.Diagnostics {
		if d.Instruction != "bogus" {
			t.Fatalf("diagnostic on wrong instruction: %+v", d)
		}
		kinds[d.Kind]++
	}
	if kinds["malformed_location"] != 1 || kinds["dropped_variable"] != 1 {
		t.Fatalf("expected malformed_location and dropped_variable, got %+v", tables.Diagnostics)
	}
}

func TestFilterTablesByFiles(t *testing.T) {
	tables := BuildTables(resolvedFixture(t))
	filtered := FilterTablesByFiles(tables, map[string]bool{"add.yaml": true})

	if len(filtered.Instructions) != 1 || filtered.Instructions[0].Name != "add" {
		t.Fatalf("expected only add, got %+v", filtered.Instructions)
	}
	for _, d := range filtered.Diagnostics {
		t.Fatalf("bogus diagnostics should be filtered out: %+v", d)
	}
	if empty := FilterTablesByFiles(tables, nil); len(empty.Instructions) != 0 {
		t.Fatalf("empty set must yield empty tables, got %+v", empty)
	}
}

func TestComputeDelta(t *testing.T) {
	prev := Tables{Instructions: []InstructionRow{
		{Name: "add", File: "add.yaml", Width: 32, Format: "R"},
	}}
	next := Tables{Instructions: []InstructionRow{
		{Name: "add", File: "add.yaml", Width: 32, Format: "R"},
		{Name: "sub", File: "sub.yaml", Width: 32, Format: "R"},
	}}

	delta := ComputeDelta(prev, next)
	if len(delta.Added.Instructions) != 1 || delta.Added.Instructions[0].Name != "sub" {
		t.Fatalf("expected sub added, got %+v", delta.Added.Instructions)
	}
	if len(delta.Removed.Instructions) != 0 {
		t.Fatalf("expected nothing removed, got %+v", delta.Removed.Instructions)
	}
}
