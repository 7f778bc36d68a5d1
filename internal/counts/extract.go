package counts

import (
	"math"
	"regexp"
	"unicode"
)

// summaryPattern matches "<count> <label>" pairs. Counts are decimal digits of
// any script, the separator is any run of white or separator space, labels are
// word characters (letters, digits, underscore) of any script.
var summaryPattern = regexp.MustCompile(`(\p{Nd}+)[\s\p{Z}]+([\p{L}\p{N}_]+)`)

// Extract parses a detector summary such as "2 tomato, 5 leaf" into counts.
//
// When a label appears more than once the last count wins, it is not summed.
// Text without any pair yields an empty mapping; Extract never fails.
func Extract(summary string) *ClassCounts {
	c := NewClassCounts()
	for _, m := range summaryPattern.FindAllStringSubmatch(summary, -1) {
		n, ok := parseDigits(m[1])
		if !ok {
			// out of int range
			continue
		}
		c.Set(m[2], n)
	}
	return c
}

func parseDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		d := digitValue(r)
		if n > (math.MaxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// digitValue returns the value of a decimal digit rune. Unicode lays every
// decimal digit set out as ten consecutive code points starting at zero.
func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	k := 0
	for unicode.IsDigit(r - rune(k) - 1) {
		k++
	}
	return k % 10
}
