package triplet

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

func utterances(texts ...string) []entities.Utterance {
	out := make([]entities.Utterance, len(texts))
	for i, text := range texts {
		out[i] = entities.Utterance{
			Timestamp: "00:00:00",
			OrderKey:  entities.NewOrderKey(i+1, 1),
			Speaker:   "s1",
			Text:      text,
		}
	}
	return out
}

func TestBuild_Context(t *testing.T) {
	in := utterances("a", "b", "c", "d", "e")
	got := Build(in)
	require.Len(t, got, len(in))

	for i, tr := range got {
		var prev, next []string
		for j := max(0, i-2); j < i; j++ {
			prev = append(prev, in[j].Text)
		}
		for j := i + 1; j < min(len(in), i+3); j++ {
			next = append(next, in[j].Text)
		}
		assert.Equal(t, strings.Join(prev, " "), tr.PrevContext, "prev of %d", i)
		assert.Equal(t, strings.Join(next, " "), tr.NextContext, "next of %d", i)
		assert.Equal(t, fmt.Sprintf("[TGT] %s [/TGT]", in[i].Text), tr.Target)
		assert.False(t, tr.Labeled())
		assert.NotContains(t, tr.PrevContext, in[i].Text)
		assert.NotContains(t, tr.NextContext, in[i].Text)
	}

	assert.Equal(t, "", got[0].PrevContext)
	assert.Equal(t, "", got[len(got)-1].NextContext)
}

func TestBuild_SingleAndEmpty(t *testing.T) {
	assert.Empty(t, Build(nil))

	got := Build(utterances("only"))
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].PrevContext)
	assert.Equal(t, "", got[0].NextContext)
	assert.Equal(t, "[TGT] only [/TGT]", got[0].Target)
}

func TestBuild_NaturalOrder(t *testing.T) {
	in := []entities.Utterance{
		{OrderKey: "10-1", Text: "four"},
		{OrderKey: "2-10", Text: "three"},
		{OrderKey: "2-1", Text: "one"},
		{OrderKey: "2-2", Text: "two"},
	}
	got := Build(in)

	keys := make([]string, len(got))
	for i, tr := range got {
		keys[i] = tr.OrderKey
	}
	assert.Equal(t, []string{"2-1", "2-2", "2-10", "10-1"}, keys)
	assert.Equal(t, "one two", got[2].PrevContext)
	assert.Equal(t, "three four", got[1].NextContext)

	// input untouched
	assert.Equal(t, "10-1", in[0].OrderKey)
}

func TestBuild_CarriesMetadata(t *testing.T) {
	in := []entities.Utterance{{Timestamp: "00:01:02", OrderKey: "1-1", Speaker: "SPEAKER_01", Text: "hello"}}
	got := Build(in)
	assert.Equal(t, "00:01:02", got[0].Timestamp)
	assert.Equal(t, "SPEAKER_01", got[0].Speaker)
	assert.Equal(t, "hello", got[0].Text())
}
