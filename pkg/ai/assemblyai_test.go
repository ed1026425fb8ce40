package ai

import (
	"context"
	"encoding/json"
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/johnquangdev/meeting-filter/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFromTranscript_Utterances(t *testing.T) {
	var transcript aai.Transcript
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "tr-1",
		"status": "completed",
		"language_code": "ko",
		"text": "Hello everyone. Um.",
		"utterances": [
			{"speaker": "A", "text": "Hello everyone.", "start": 400, "end": 2150, "confidence": 0.93, "words": []},
			{"speaker": "B", "text": "Um.", "start": 2500, "end": 2900, "confidence": 0.51, "words": []}
		]
	}`), &transcript))

	result := resultFromTranscript(transcript)
	assert.Equal(t, "tr-1", result.ID)
	assert.Equal(t, "ko", result.Language)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, TranscriptSegment{Text: "Hello everyone.", Speaker: "A", Start: 0.4, End: 2.15, Confidence: 0.93}, result.Segments[0])
	assert.Equal(t, "B", result.Segments[1].Speaker)
	assert.InDelta(t, 2.5, result.Segments[1].Start, 1e-9)
}

func TestResultFromTranscript_NoSpeakerLabels(t *testing.T) {
	var transcript aai.Transcript
	require.NoError(t, json.Unmarshal([]byte(`{"id":"tr-2","status":"completed","text":"Just one block."}`), &transcript))

	result := resultFromTranscript(transcript)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, "Just one block.", result.Segments[0].Text)
	assert.Empty(t, result.Segments[0].Speaker)
}

func TestAssemblyAITranscriber_Ready(t *testing.T) {
	t.Setenv("ASSEMBLYAI_API_KEY", "")
	assert.Error(t, NewAssemblyAITranscriber(&config.AssemblyAIConfig{}).Ready(context.Background()))
	assert.NoError(t, NewAssemblyAITranscriber(&config.AssemblyAIConfig{APIKey: "k"}).Ready(context.Background()))
}
