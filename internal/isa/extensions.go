package isa

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// builtinExtensions maps extension identifiers to human-readable names.
// The 32-bit form's name stands in for all width variants of an extension.
var builtinExtensions = map[string]string{
	"I":        "Base Integer Instruction Set",
	"M":        "Integer Multiplication and Division",
	"A":        "Atomic Instructions",
	"F":        "Single-Precision Floating-Point",
	"D":        "Double-Precision Floating-Point",
	"Q":        "Quad-Precision Floating-Point",
	"C":        "Compressed Instructions",
	"B":        "Bit Manipulation",
	"V":        "Vector Operations",
	"H":        "Hypervisor",
	"Zicsr":    "Control and Status Register Instructions",
	"Zifencei": "Instruction-Fetch Fence",
}

// ExtensionNames returns the extension lookup table, optionally overlaid
// with entries from a YAML file mapping identifiers to names. An empty
// path yields the built-in table.
func ExtensionNames(path string) (map[string]string, error) {
	names := make(map[string]string, len(builtinExtensions))
	for k, v := range builtinExtensions {
		names[k] = v
	}
	if path == "" {
		return names, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extensions file: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing extensions file %s: %w", path, err)
	}
	for k, v := range overrides {
		names[k] = v
	}
	return names, nil
}

// ExtensionName resolves one identifier against a table, falling back to
// the identifier itself for unknown extensions.
func ExtensionName(names map[string]string, ext string) string {
	if name, ok := names[ext]; ok {
		return name
	}
	return ext
}
