package pipeline

import "github.com/johnquangdev/meeting-filter/internal/domain/entities"

// SegmentRequest is one speech-to-text segment.
type SegmentRequest struct {
	Text    *string `json:"text"`
	Start   float64 `json:"start" validate:"gte=0"`
	End     float64 `json:"end" validate:"gte=0"`
	Speaker string  `json:"speaker,omitempty" validate:"max=64"`
}

// ToEntity converts the request segment into a domain segment
func (r SegmentRequest) ToEntity() entities.Segment {
	return entities.Segment{Text: r.Text, Start: r.Start, End: r.End, Speaker: r.Speaker}
}

// FilterTranscriptRequest carries a transcript in one of three shapes.
// Format defaults to "segments" when segments are given and "text" otherwise.
type FilterTranscriptRequest struct {
	Format    string           `json:"format,omitempty" validate:"omitempty,oneof=segments text jsonl"`
	Segments  []SegmentRequest `json:"segments,omitempty" validate:"omitempty,dive"`
	Text      string           `json:"text,omitempty" validate:"max=2000000"`
	BatchSize int              `json:"batch_size,omitempty" validate:"omitempty,min=1,max=256"`
}

// ResolvedFormat returns the explicit format or the one implied by the body.
func (r FilterTranscriptRequest) ResolvedFormat() string {
	if r.Format != "" {
		return r.Format
	}
	if len(r.Segments) > 0 {
		return "segments"
	}
	return "text"
}

// FilterAudioRequest asks for transcription followed by filtering.
type FilterAudioRequest struct {
	AudioURL     string `json:"audio_url" validate:"required,url"`
	LanguageCode string `json:"language_code,omitempty" validate:"omitempty,min=2,max=8"`
	BatchSize    int    `json:"batch_size,omitempty" validate:"omitempty,min=1,max=256"`
}

// AnalysisRequest asks for structured analysis of a transcript.
type AnalysisRequest struct {
	Text   string `json:"text" validate:"required"`
	Filter bool   `json:"filter,omitempty"`
}
