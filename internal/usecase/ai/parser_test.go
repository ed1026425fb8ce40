package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"fenced", "Here you go:\n```json\n{\"summary\": \"x\"}\n```\nThanks", `{"summary": "x"}`, true},
		{"bare", `{"summary": "x"}`, `{"summary": "x"}`, true},
		{"prose around braces", `Result: {"a": {"b": 1}} done`, `{"a": {"b": 1}}`, true},
		{"empty fence falls back to braces", "```json\n```\n{\"a\": 1}", `{"a": 1}`, true},
		{"no object", "I cannot help with that.", "", false},
		{"reversed braces", "} nope {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	content := "```json\n" + `{
  "summary": " Budget review. ",
  "action_items": [
    {"task": "Send the deck", "assignee": "kim", "priority": "High"},
    {"title": "Book the venue", "assigned_to": "lee"},
    {"task": "  "}
  ],
  "decisions": [{"decision": "Launch in May"}, "Cut scope", ""],
  "key_points": "Only one point",
  "next_steps": null,
  "participants": ["kim", "lee"]
}` + "\n```"

	result := ParseAnalysis(content)
	require.False(t, result.Failed(), result.Error)
	assert.Equal(t, "Budget review.", result.Summary)
	require.Len(t, result.ActionItems, 2)
	assert.Equal(t, "Send the deck", result.ActionItems[0].Task)
	assert.Equal(t, "high", result.ActionItems[0].Priority)
	assert.Equal(t, "Book the venue", result.ActionItems[1].Task)
	assert.Equal(t, "lee", result.ActionItems[1].Assignee)
	assert.Equal(t, []string{"Launch in May", "Cut scope"}, result.Decisions)
	assert.Equal(t, []string{"Only one point"}, result.KeyPoints)
	assert.Empty(t, result.NextSteps)
	assert.Equal(t, []string{"kim", "lee"}, result.Participants)
}

func TestParseAnalysis_FailurePayload(t *testing.T) {
	result := ParseAnalysis("sorry, no JSON today")
	assert.True(t, result.Failed())
	assert.True(t, strings.HasPrefix(result.Error, "JSON parsing failed"))
	assert.Equal(t, "sorry, no JSON today", result.RawResponse)

	result = ParseAnalysis(`{"summary": `)
	assert.True(t, result.Failed())
}

func TestParseAnalysis_TruncatesRawResponse(t *testing.T) {
	content := "{" + strings.Repeat("회", 2*MaxRawResponseRunes)
	result := ParseAnalysis(content)
	require.True(t, result.Failed())
	assert.Equal(t, MaxRawResponseRunes, len([]rune(result.RawResponse)))
}
