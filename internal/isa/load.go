package isa

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads one YAML instruction definition.
func LoadFile(path string) (Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Instruction{}, fmt.Errorf("reading instruction file: %w", err)
	}
	return decode(data, path)
}

func decode(data []byte, path string) (Instruction, error) {
	var inst Instruction
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return Instruction{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if inst.Name == "" {
		return Instruction{}, fmt.Errorf("parsing %s: missing instruction name", path)
	}
	inst.SourceFile = path
	return inst, nil
}
