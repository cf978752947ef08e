package isa

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Instruction is one decoded instruction definition.
type Instruction struct {
	Name        string   `yaml:"name" json:"name"`
	LongName    string   `yaml:"long_name" json:"long_name,omitempty"`
	Extension   string   `yaml:"extension" json:"extension,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Encoding    Encoding `yaml:"encoding" json:"encoding"`

	// SourceFile is the definition file this instruction was loaded from.
	SourceFile string `yaml:"-" json:"source_file,omitempty"`
}

// VariableDef is a named variable field with its raw bit-location string.
type VariableDef struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location" json:"location"`
}

// Encoding is an instruction's encoding block. It comes in two shapes:
// a direct {match, variables} pair, or a map of sub-architecture variant
// keys (e.g. RV32, RV64) each holding that pair. Variants keep YAML
// document order so representative-variant selection is reproducible.
type Encoding struct {
	Match     string
	Variables []VariableDef
	Variants  []EncodingVariant
}

// EncodingVariant is one width-specific form of a multi-variant encoding.
type EncodingVariant struct {
	Key       string        `json:"key"`
	Match     string        `json:"match"`
	Variables []VariableDef `json:"variables,omitempty"`
}

type encodingBody struct {
	Match     *string       `yaml:"match"`
	Variables []VariableDef `yaml:"variables"`
}

// UnmarshalYAML accepts both encoding shapes. A mapping containing a
// "match" or "variables" key is the direct form; any other mapping is
// treated as variant-keyed.
func (e *Encoding) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("encoding must be a mapping, got %s", nodeKindName(node.Kind))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if key == "match" || key == "variables" {
			var body encodingBody
			if err := node.Decode(&body); err != nil {
				return fmt.Errorf("decoding encoding: %w", err)
			}
			if body.Match != nil {
				e.Match = *body.Match
			}
			e.Variables = body.Variables
			return nil
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var body encodingBody
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("decoding encoding variant %q: %w", node.Content[i].Value, err)
		}
		variant := EncodingVariant{
			Key:       node.Content[i].Value,
			Variables: body.Variables,
		}
		if body.Match != nil {
			variant.Match = *body.Match
		}
		e.Variants = append(e.Variants, variant)
	}
	return nil
}

// MarshalJSON mirrors the two YAML shapes so the schema validator sees the
// same structure the corpus files use.
func (e Encoding) MarshalJSON() ([]byte, error) {
	if len(e.Variants) > 0 {
		return json.Marshal(struct {
			Variants []EncodingVariant `json:"variants"`
		}{e.Variants})
	}
	return json.Marshal(struct {
		Match     string        `json:"match"`
		Variables []VariableDef `json:"variables,omitempty"`
	}{e.Match, e.Variables})
}

// UnmarshalJSON is the inverse of MarshalJSON, used when resolved results
// come back out of the on-disk cache.
func (e *Encoding) UnmarshalJSON(data []byte) error {
	var raw struct {
		Match     string            `json:"match"`
		Variables []VariableDef     `json:"variables"`
		Variants  []EncodingVariant `json:"variants"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Match = raw.Match
	e.Variables = raw.Variables
	e.Variants = raw.Variants
	return nil
}

// Variant selects the one representative form that gets resolved. For the
// direct shape it is the encoding itself. For the variant-keyed shape the
// preference order is deterministic: the first key naming the 32-bit base
// wins, otherwise the first key in document order. Only this one variant
// is ever resolved.
func (e Encoding) Variant() (match string, vars []VariableDef, key string) {
	if len(e.Variants) == 0 {
		return e.Match, e.Variables, ""
	}
	chosen := e.Variants[0]
	for _, v := range e.Variants {
		if strings.Contains(v.Key, "32") {
			chosen = v
			break
		}
	}
	return chosen.Match, chosen.Variables, chosen.Key
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
