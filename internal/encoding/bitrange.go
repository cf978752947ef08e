package encoding

import (
	"sort"
	"strconv"
	"strings"
)

// BitRange is an inclusive, contiguous span of bit positions within an
// instruction word. Bit 0 is the least significant bit.
type BitRange struct {
	High int `json:"high"`
	Low  int `json:"low"`
}

// Width returns the number of bits the range covers.
func (r BitRange) Width() int {
	return r.High - r.Low + 1
}

// ParseLocation parses a bit-location expression into normalized ranges.
//
// An expression is one or more pieces joined by "|", each piece either a
// single bit index ("7") or a range ("31-25"), with optional whitespace
// around each piece. Endpoints may be given in either order; they are
// reordered so High >= Low. The result is sorted descending by High, ties
// broken by descending Low.
//
// The parser is lenient: a piece that does not parse to integers is dropped
// rather than failing the whole expression. Dropped pieces are returned so
// callers can tell "no ranges existed" apart from "ranges were unparsable".
func ParseLocation(expr string) (ranges []BitRange, malformed []string) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	for _, piece := range strings.Split(expr, "|") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			malformed = append(malformed, piece)
			continue
		}

		rawHigh, rawLow, found := strings.Cut(piece, "-")
		if !found {
			rawLow = rawHigh
		}
		high, errHigh := strconv.Atoi(strings.TrimSpace(rawHigh))
		low, errLow := strconv.Atoi(strings.TrimSpace(rawLow))
		if errHigh != nil || errLow != nil {
			malformed = append(malformed, piece)
			continue
		}
		if high < low {
			high, low = low, high
		}
		if low < 0 {
			malformed = append(malformed, piece)
			continue
		}

		ranges = append(ranges, BitRange{High: high, Low: low})
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].High != ranges[j].High {
			return ranges[i].High > ranges[j].High
		}
		return ranges[i].Low > ranges[j].Low
	})

	return ranges, malformed
}
