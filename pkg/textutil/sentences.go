// Package textutil holds the text primitives shared by transcript normalization
// and chunking.
package textutil

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// IsTerminal reports whether r ends a sentence.
func IsTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

// SplitSentences splits text at terminal punctuation.
//
// A run of terminal punctuation ("...", "?!") ends a sentence whether or not
// whitespace follows it, and any whitespace after the run is dropped. A period
// between two digits ("3.5") is not a boundary. Returned sentences are trimmed
// and never empty.
//
// This departs from the plain "space after every .?!" rule in two places: that
// rule turns "3.5" into "3." and "5", and "..." into three one-dot sentences.
// Here both stay whole, so decimals and trailing ellipses keep their context.
func SplitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var (
		sentences []string
		current   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if !IsTerminal(r) || isDecimalPoint(runes, i) {
			continue
		}
		for i+1 < len(runes) && IsTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		flush()
	}
	flush()

	return sentences
}

func isDecimalPoint(runes []rune, i int) bool {
	if runes[i] != '.' || i == 0 || i+1 >= len(runes) {
		return false
	}
	return isASCIIDigit(runes[i-1]) && isASCIIDigit(runes[i+1])
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// FormatTimestamp renders seconds as HH:MM:SS, truncating fractions.
// Negative and NaN inputs render as 00:00:00.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
