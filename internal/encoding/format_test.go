package encoding

import "testing"

func TestClassifyFormatR(t *testing.T) {
	if got := ClassifyFormat(rTypeVars()); got != FormatR {
		t.Fatalf("expected R, got %q", got)
	}
}

func TestClassifyFormatI(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xs1", Location: "19-15"},
		{Name: "xd", Location: "11-7"},
		{Name: "imm", Location: "31-20"},
	}
	if got := ClassifyFormat(vars); got != FormatI {
		t.Fatalf("expected I, got %q", got)
	}
}

func TestClassifyFormatS(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xs2", Location: "24-20"},
		{Name: "xs1", Location: "19-15"},
		{Name: "imm", Location: "11-7"},
	}
	if got := ClassifyFormat(vars); got != FormatS {
		t.Fatalf("expected S, got %q", got)
	}
}

// The B predicate tests the same three positions as S, and S is checked
// first, so B can never win. This pins the documented limitation.
func TestClassifyFormatBUnreachable(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xs2", Location: "24-20"},
		{Name: "xs1", Location: "19-15"},
		{Name: "imm", Location: "11-7"},
	}
	if got := ClassifyFormat(vars); got == FormatB {
		t.Fatalf("B should be shadowed by S")
	}
	if got := ClassifyFormat(vars); got != FormatS {
		t.Fatalf("expected S, got %q", got)
	}
}

func TestClassifyFormatU(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xd", Location: "11-7"},
		{Name: "imm", Location: "31-12"},
	}
	if got := ClassifyFormat(vars); got != FormatU {
		t.Fatalf("expected U, got %q", got)
	}
}

func TestClassifyFormatJ(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xd", Location: "11-7"},
		{Name: "imm", Location: "31|19-12|20|30-21"},
	}
	if got := ClassifyFormat(vars); got != FormatJ {
		t.Fatalf("expected J, got %q", got)
	}
}

func TestClassifyFormatUnknown(t *testing.T) {
	if got := ClassifyFormat(nil); got != FormatUnknown {
		t.Fatalf("expected unresolved, got %q", got)
	}
	vars := []VariableSpec{{Name: "xd", Location: "12-8"}}
	if got := ClassifyFormat(vars); got != FormatUnknown {
		t.Fatalf("expected unresolved for non-canonical positions, got %q", got)
	}
}

func TestClassifyFormatTrimsWhitespace(t *testing.T) {
	vars := []VariableSpec{
		{Name: "xd", Location: " 11-7 "},
		{Name: "imm", Location: "31-12"},
	}
	if got := ClassifyFormat(vars); got != FormatU {
		t.Fatalf("expected U, got %q", got)
	}
}
