package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \n\t", nil},
		{"no punctuation", "hello there", []string{"hello there"}},
		{"regular spacing", "Hi everyone. Let's begin! Ready?", []string{"Hi everyone.", "Let's begin!", "Ready?"}},
		{"missing space", "Done.Next item?Yes", []string{"Done.", "Next item?", "Yes"}},
		{"extra spaces", "One.    Two.\n\nThree.", []string{"One.", "Two.", "Three."}},
		{"punctuation run", "Wait...what?! Okay.", []string{"Wait...", "what?!", "Okay."}},
		{"decimal", "Budget is 3.5 million. Approved.", []string{"Budget is 3.5 million.", "Approved."}},
		{"hangul", "안녕하세요.회의를 시작하겠습니다.", []string{"안녕하세요.", "회의를 시작하겠습니다."}},
		{"only punctuation", "...", []string{"..."}},
		{"decimal and ellipsis together", "Version 2.0 ships... Really?", []string{"Version 2.0 ships...", "Really?"}},
		{"period before digit after word", "Item 3.Next", []string{"Item 3.", "Next"}},
		{"decimal at end", "Raise to 1.25", []string{"Raise to 1.25"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatTimestamp(0))
	assert.Equal(t, "00:00:05", FormatTimestamp(5.99))
	assert.Equal(t, "00:01:05", FormatTimestamp(65))
	assert.Equal(t, "02:00:01", FormatTimestamp(7201.2))
	assert.Equal(t, "00:00:00", FormatTimestamp(-3))
}
