package encoding

// DontCare marks a match-pattern bit that is determined by a variable
// field rather than a fixed opcode bit.
const DontCare = '-'

// MatchPattern is a match string exploded into one symbol per bit. Index 0
// corresponds to the most significant bit of the instruction word; each
// symbol is '0', '1' or DontCare.
type MatchPattern []byte

// ParseMatchPattern explodes a match string into a MatchPattern. Only the
// two supported instruction widths are recognized; any other length yields
// nil, meaning no fields can be derived from the pattern.
func ParseMatchPattern(match string) MatchPattern {
	if len(match) != 16 && len(match) != 32 {
		return nil
	}
	return MatchPattern(match)
}

// Width returns the instruction width the pattern describes.
func (p MatchPattern) Width() int {
	return len(p)
}

// Slice returns the symbols covering bits [high, low], most significant
// first, or "" if the span falls outside the pattern.
func (p MatchPattern) Slice(high, low int) string {
	if high < low || low < 0 || high >= len(p) {
		return ""
	}
	return string(p[len(p)-1-high : len(p)-low])
}

// FixedSlices holds the literal bits at the three canonical fixed spans of
// a 32-bit instruction. A slice is empty when the pattern does not fully
// determine it, i.e. the span still contains a don't-care symbol. Not every
// instruction defines funct3 or funct7.
type FixedSlices struct {
	Opcode string `json:"opcode,omitempty"`
	Funct3 string `json:"funct3,omitempty"`
	Funct7 string `json:"funct7,omitempty"`
}

// Fixed re-slices a 32-bit pattern at the opcode, funct3 and funct7 spans.
// Patterns of any other width have no canonical fixed spans.
func (p MatchPattern) Fixed() FixedSlices {
	if len(p) != 32 {
		return FixedSlices{}
	}
	var f FixedSlices
	if s := p.Slice(6, 0); isLiteralBits(s) {
		f.Opcode = s
	}
	if s := p.Slice(14, 12); isLiteralBits(s) {
		f.Funct3 = s
	}
	if s := p.Slice(31, 25); isLiteralBits(s) {
		f.Funct7 = s
	}
	return f
}

func isLiteralBits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
