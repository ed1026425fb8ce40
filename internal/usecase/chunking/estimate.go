// Package chunking splits long transcripts into token-bounded chunks and
// merges the per-chunk analysis results back together.
package chunking

// Weights are in tenths of a token so the arithmetic stays integral.
const (
	hangulWeight = 15 // per syllable
	wordWeight   = 13 // per maximal run of ASCII letters
	otherWeight  = 10 // per rune
	spaceJoin    = otherWeight
)

// EstimateTokens approximates how many model tokens text will consume.
// The estimate is deterministic and monotonic in the text's content.
func EstimateTokens(text string) int {
	return ceilTokens(estimateTenths(text))
}

func estimateTenths(text string) int {
	total := 0
	inWord := false
	for _, r := range text {
		switch {
		case isHangulSyllable(r):
			total += hangulWeight
			inWord = false
		case isASCIILetter(r):
			if !inWord {
				total += wordWeight
				inWord = true
			}
		default:
			total += otherWeight
			inWord = false
		}
	}
	return total
}

func ceilTokens(tenths int) int {
	return (tenths + 9) / 10
}

func isHangulSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
