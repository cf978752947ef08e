package encoding

import "strings"

// FormatTag is the one-letter structural classification of an instruction.
// The empty tag means the encoding matched none of the known shapes.
type FormatTag string

const (
	FormatI       FormatTag = "I"
	FormatR       FormatTag = "R"
	FormatS       FormatTag = "S"
	FormatU       FormatTag = "U"
	FormatJ       FormatTag = "J"
	FormatB       FormatTag = "B"
	FormatUnknown FormatTag = ""
)

// Canonical location strings for the named operand fields.
const (
	locDest    = "11-7"
	locSrc1    = "19-15"
	locSrc2    = "24-20"
	locImmI    = "31-20"
	locImmS    = "11-7"
	locImmU    = "31-12"
	locImmJump = "31|19-12|20|30-21"
)

// ClassifyFormat guesses a format tag from the raw variable list alone,
// comparing each field's location expression for exact string equality
// against the canonical positions of xd, xs1, xs2 and imm. It applies the
// predicates in a fixed order and returns the first match.
//
// Known limitation: the S and B predicates test the same three positions,
// and S is checked first, so B is never returned. Telling the two apart
// would need the immediate's segment shape rather than its raw string;
// the published classification order is kept as-is.
func ClassifyFormat(vars []VariableSpec) FormatTag {
	loc := make(map[string]string, len(vars))
	for _, v := range vars {
		loc[v.Name] = strings.TrimSpace(v.Location)
	}

	switch {
	case loc["xd"] == locDest && loc["xs1"] == locSrc1 && loc["xs2"] == locSrc2:
		return FormatR
	case loc["xd"] == locDest && loc["xs1"] == locSrc1 && loc["imm"] == locImmI:
		return FormatI
	case loc["xs2"] == locSrc2 && loc["xs1"] == locSrc1 && loc["imm"] == locImmS:
		return FormatS
	case loc["xs2"] == locSrc2 && loc["xs1"] == locSrc1 && loc["imm"] == locImmS:
		// Identical to the S predicate above; unreachable.
		return FormatB
	case loc["xd"] == locDest && loc["imm"] == locImmU:
		return FormatU
	case loc["xd"] == locDest && loc["imm"] == locImmJump:
		return FormatJ
	}

	return FormatUnknown
}
