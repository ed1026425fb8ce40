package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/usecase/filter"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	found := map[string]bool{}
	for _, sub := range cmd.Commands() {
		found[sub.Name()] = true
	}
	for _, name := range []string{"filter", "analyze", "chunk", "estimate", "migrate"} {
		assert.True(t, found[name], "missing subcommand %q", name)
	}
}

func TestEstimateCommand(t *testing.T) {
	out, _, err := execute(t, "", "estimate", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, _, err = execute(t, "회의", "estimate")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestChunkCommand(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Ship the release now. ", 20))

	out, _, err := execute(t, text, "chunk", "--max-tokens", "25", "--overlap", "10", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		var c entities.Chunk
		require.NoError(t, json.Unmarshal([]byte(line), &c))
		assert.Equal(t, i, c.ID)
		assert.LessOrEqual(t, c.EstimatedTokens, 25)
	}

	_, _, err = execute(t, text, "chunk", "--max-tokens", "0")
	assert.ErrorIs(t, err, entities.ErrInvalidBudget)
}

func TestFilterCommand_PassThroughWithoutClassifier(t *testing.T) {
	out, stderr, err := execute(t, "A: Nice weather today.\nB: The budget is approved.\n",
		"filter", "--format", "text", "--classifier-url", "", "--audit", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Nice weather today.")
	assert.Contains(t, out, "The budget is approved.")
	assert.Contains(t, stderr, "classifier unavailable")
}

func TestFilterCommand_WritesAudit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "model_loaded": true})
		case "/predict/batch":
			var req struct {
				Texts []string `json:"texts"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			preds := make([]map[string]any, len(req.Texts))
			for i := range preds {
				preds[i] = map[string]any{"label": 1, "confidence": 0.9}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"predictions": preds})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "meeting.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(
		`{"timestamp": "00:00:01", "speaker": "A", "text": "Nice weather today."}`+"\n"+
			`{"timestamp": "00:00:05", "speaker": "B", "text": "Did you sleep well?"}`+"\n"), 0o644))
	audit := filepath.Join(dir, "noise.jsonl")

	out, _, err := execute(t, "", "filter", "--input", input, "--classifier-url", srv.URL, "--audit", audit, "--json")
	require.NoError(t, err)

	var result pipeline.FilterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Stats.ClassifierAvailable)
	assert.Equal(t, 2, result.Stats.Discarded)
	assert.Empty(t, result.Kept)

	data, err := os.ReadFile(audit)
	require.NoError(t, err)
	records, err := filter.DecodeJSONL(data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Nice weather today.", records[0].Text)
}

func TestFilterCommand_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "x", "filter", "--format", "srt", "--classifier-url", "", "--audit", "")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, "jsonl", formatForPath("a.JSONL"))
	assert.Equal(t, "segments", formatForPath("stt.json"))
	assert.Equal(t, "text", formatForPath("notes.txt"))
	assert.Equal(t, "text", formatForPath(""))
}

func TestParseSegments(t *testing.T) {
	segments, err := parseSegments([]byte(`[{"text": "hi", "start": 0, "end": 1}]`))
	require.NoError(t, err)
	require.Len(t, segments, 1)

	segments, err = parseSegments([]byte(`{"segments": [{"text": "a"}, {"start": 2}]}`))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.False(t, segments[1].HasText())

	_, err = parseSegments([]byte(`{`))
	assert.Error(t, err)
}
