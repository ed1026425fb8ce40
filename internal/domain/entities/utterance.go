package entities

import (
	"fmt"
	"strings"
)

// Utterance is a single sentence of speech, the atomic unit of filtering.
type Utterance struct {
	Timestamp string `json:"timestamp"`
	OrderKey  string `json:"order_key"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// NewOrderKey builds the "<segment>-<sentence>" key. Both indices are 1-based.
func NewOrderKey(segment, sentence int) string {
	return fmt.Sprintf("%d-%d", segment, sentence)
}

// CompareOrderKeys orders keys naturally: digit runs compare by numeric value,
// everything else byte-wise. "2-2" sorts before "2-10", which sorts before "10-1".
func CompareOrderKeys(a, b string) int {
	tie := 0
	for a != "" && b != "" {
		var ca, cb string
		ca, a = nextRun(a)
		cb, b = nextRun(b)

		da, db := isDigitRun(ca), isDigitRun(cb)
		switch {
		case da && db:
			c, zeros := compareNumeric(ca, cb)
			if c != 0 {
				return c
			}
			if tie == 0 {
				tie = zeros
			}
		case da != db:
			// digits sort before text
			if da {
				return -1
			}
			return 1
		default:
			if c := strings.Compare(ca, cb); c != 0 {
				return c
			}
		}
	}
	switch {
	case a == "" && b == "":
		// equal values with different zero padding: "01" after "1"
		return tie
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextRun splits off the leading run of digits or non-digits.
func nextRun(s string) (run, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two digit runs by value. zeros breaks ties between
// equal values written with different zero padding.
func compareNumeric(a, b string) (c, zeros int) {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1, 0
		}
		return 1, 0
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c, 0
	}
	switch {
	case len(a) < len(b):
		return 0, -1
	case len(a) > len(b):
		return 0, 1
	}
	return 0, 0
}

func isDigitRun(s string) bool {
	return s != "" && isDigit(s[0])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
