package ai

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/johnquangdev/meeting-filter/pkg/config"
)

// TranscriptSegment is one speaker turn returned by speech-to-text.
// Start and End are in seconds.
type TranscriptSegment struct {
	Text       string
	Speaker    string
	Start      float64
	End        float64
	Confidence float64
}

// TranscriptionResult is a finished transcript.
type TranscriptionResult struct {
	ID       string
	Language string
	Text     string
	Segments []TranscriptSegment
}

// AssemblyAITranscriber wraps the official AssemblyAI SDK client
type AssemblyAITranscriber struct {
	client       *aai.Client
	apiKey       string
	languageCode string
}

// NewAssemblyAITranscriber creates a transcriber using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig) *AssemblyAITranscriber {
	var apiKey, baseURL, lang string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
		lang = cfg.LanguageCode
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	return &AssemblyAITranscriber{
		client:       aai.NewClientWithOptions(opts...),
		apiKey:       apiKey,
		languageCode: lang,
	}
}

// Ready reports whether the transcriber can be used.
func (t *AssemblyAITranscriber) Ready(ctx context.Context) error {
	if t.apiKey == "" {
		return fmt.Errorf("assemblyai api key is not configured")
	}
	return ctx.Err()
}

// Transcribe submits an audio URL with speaker labels enabled and waits for
// the transcript. An empty languageCode uses the configured default.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioURL, languageCode string) (*TranscriptionResult, error) {
	if languageCode == "" {
		languageCode = t.languageCode
	}
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if languageCode != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(languageCode)
	}

	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}
	return resultFromTranscript(transcript), nil
}

// resultFromTranscript converts SDK utterances into segments. Without speaker
// labels the whole text becomes a single segment.
func resultFromTranscript(transcript aai.Transcript) *TranscriptionResult {
	result := &TranscriptionResult{
		Language: string(transcript.LanguageCode),
	}
	if transcript.ID != nil {
		result.ID = *transcript.ID
	}
	if transcript.Text != nil {
		result.Text = *transcript.Text
	}

	for _, utt := range transcript.Utterances {
		seg := TranscriptSegment{}
		if utt.Text != nil {
			seg.Text = *utt.Text
		}
		if utt.Speaker != nil {
			seg.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			seg.Start = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			seg.End = float64(*utt.End) / 1000.0
		}
		if utt.Confidence != nil {
			seg.Confidence = *utt.Confidence
		}
		result.Segments = append(result.Segments, seg)
	}

	if len(result.Segments) == 0 && result.Text != "" {
		result.Segments = []TranscriptSegment{{Text: result.Text}}
	}
	return result
}
