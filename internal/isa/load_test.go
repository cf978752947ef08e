package isa

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "add.yaml")
	if err := os.WriteFile(path, []byte(addYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	inst, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if inst.Name != "add" {
		t.Fatalf("unexpected instruction %+v", inst)
	}
	if inst.SourceFile != path {
		t.Fatalf("expected source file recorded, got %q", inst.SourceFile)
	}
}

func TestLoadFileMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.yaml")
	if err := os.WriteFile(path, []byte("encoding:\n  match: null\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for nameless instruction")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExtensionNamesBuiltin(t *testing.T) {
	names, err := ExtensionNames("")
	if err != nil {
		t.Fatalf("builtin table: %v", err)
	}
	if names["I"] != "Base Integer Instruction Set" {
		t.Fatalf("unexpected builtin table %+v", names)
	}
}

func TestExtensionNamesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ext.yaml")
	if err := os.WriteFile(path, []byte("I: Integers\nXcustom: Custom Things\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	names, err := ExtensionNames(path)
	if err != nil {
		t.Fatalf("load overrides: %v", err)
	}
	if names["I"] != "Integers" {
		t.Fatalf("override not applied: %+v", names)
	}
	if names["Xcustom"] != "Custom Things" {
		t.Fatalf("new entry missing: %+v", names)
	}
	if names["M"] != "Integer Multiplication and Division" {
		t.Fatalf("builtin entry lost: %+v", names)
	}
}

func TestExtensionNameFallback(t *testing.T) {
	names := map[string]string{"I": "Integers"}
	if got := ExtensionName(names, "Zfoo"); got != "Zfoo" {
		t.Fatalf("expected identifier fallback, got %q", got)
	}
	if got := ExtensionName(names, "I"); got != "Integers" {
		t.Fatalf("expected lookup, got %q", got)
	}
}
