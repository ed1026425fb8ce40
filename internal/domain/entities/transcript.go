package entities

import "strings"

// DefaultSpeaker is used when a segment or line carries no speaker.
const DefaultSpeaker = "UNKNOWN"

// Segment is one timed span of speech as produced by a speech-to-text engine.
// Text is a pointer so a segment without a text field can be told apart from
// an empty one.
type Segment struct {
	Text    *string `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// NewSegment builds a segment with text set.
func NewSegment(speaker, text string, start, end float64) Segment {
	return Segment{Text: &text, Start: start, End: end, Speaker: speaker}
}

// HasText reports whether the segment carries non-blank text.
func (s Segment) HasText() bool {
	return s.Text != nil && strings.TrimSpace(*s.Text) != ""
}

// Transcription is the speech-to-text result consumed by the normalizer.
type Transcription struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
	FullText string    `json:"full_text,omitempty"`
}
