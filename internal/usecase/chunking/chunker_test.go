package chunking

import (
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 2},         // 13 tenths
		{"hello world", 4},   // 13 + 10 + 13
		{"회의", 3},            // 15 + 15
		{"API v2 ready.", 8}, // 13+10+13+10+10+13+10 = 79
		{"12345", 5},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.text))
		})
	}
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	base := "We need the API done by Friday."
	assert.LessOrEqual(t, EstimateTokens(base), EstimateTokens(base+" 회의를 시작합니다."))
	assert.Equal(t, EstimateTokens(base), EstimateTokens(base))
}

func sentences(n int, body string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = body
	}
	return strings.Join(parts, " ")
}

func TestSplit_SmallInputIsOneChunk(t *testing.T) {
	text := "Hi everyone.  Let's begin!"
	chunks, err := Split(text, 100, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.False(t, chunks[0].HasOverlap)
	assert.Equal(t, 0, chunks[0].SentenceStart)
	assert.Equal(t, 1, chunks[0].SentenceEnd)
}

func TestSplit_InvalidBudget(t *testing.T) {
	_, err := Split("text", 0, 0)
	assert.ErrorIs(t, err, entities.ErrInvalidBudget)
}

func TestSplit_RespectsBudget(t *testing.T) {
	// each sentence: "Ship the release now." = 4 words + 3 spaces + '.' = 52+30+10 = 92 tenths
	text := sentences(40, "Ship the release now.")
	for _, budget := range []int{10, 25, 50, 120} {
		chunks, err := Split(text, budget, 15)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.Equal(t, i, c.ID)
			assert.False(t, c.IsSentenceSplit)
			assert.LessOrEqual(t, EstimateTokens(c.Text), budget, "chunk %d", i)
			assert.Equal(t, EstimateTokens(c.Text), c.EstimatedTokens)
		}
	}
}

func TestSplit_OverlapSeedsNextChunk(t *testing.T) {
	text := "Alpha one. Bravo two. Charlie three. Delta four. Echo five. Foxtrot six."
	// 46 tenths per sentence: two fit in 150 (102), three do not (158)
	chunks, err := Split(text, 15, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)

	assert.False(t, chunks[0].HasOverlap)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		assert.True(t, cur.HasOverlap)
		assert.Equal(t, prev.SentenceEnd, cur.SentenceStart, "chunk %d starts with the last sentence of chunk %d", i, i-1)
		lastPrev := prev.Text[strings.LastIndex(prev.Text[:len(prev.Text)-1], ".")+1:]
		assert.True(t, strings.HasPrefix(cur.Text, strings.TrimSpace(lastPrev)))
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	text := "Alpha one. Bravo two. Charlie three. Delta four."
	chunks, err := Split(text, 10, 0)
	require.NoError(t, err)
	for i, c := range chunks {
		assert.False(t, c.HasOverlap)
		if i > 0 {
			assert.Equal(t, chunks[i-1].SentenceEnd+1, c.SentenceStart)
		}
	}
}

func TestSplit_OverlapNeverExceedsBudget(t *testing.T) {
	// large overlap budget must still leave room for the next sentence
	text := sentences(12, "Ship the release now.")
	chunks, err := Split(text, 20, 19)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, EstimateTokens(c.Text), 20)
	}
}

func TestSplit_ForceSplitsOversizedSentence(t *testing.T) {
	long := strings.Repeat("회", 100) + "."
	text := "Short intro. " + long + " Wrap up."
	chunks, err := Split(text, 30, 10)
	require.NoError(t, err)

	var split []entities.Chunk
	for _, c := range chunks {
		if c.IsSentenceSplit {
			split = append(split, c)
			assert.Equal(t, entities.SentenceSplitIndex, c.SentenceStart)
			assert.Equal(t, entities.SentenceSplitIndex, c.SentenceEnd)
			assert.False(t, c.HasOverlap)
		}
		assert.LessOrEqual(t, EstimateTokens(c.Text), 30)
	}
	require.NotEmpty(t, split)

	var rebuilt strings.Builder
	for _, c := range split {
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, long, rebuilt.String())

	assert.Equal(t, "Short intro.", chunks[0].Text)
	last := chunks[len(chunks)-1]
	assert.Equal(t, "Wrap up.", last.Text)
	assert.False(t, last.HasOverlap)
}

func TestSplit_Deterministic(t *testing.T) {
	text := sentences(30, "The budget review moves to Thursday.")
	a, err := Split(text, 40, 12)
	require.NoError(t, err)
	b, err := Split(text, 40, 12)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
