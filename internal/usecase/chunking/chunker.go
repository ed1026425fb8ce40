package chunking

import (
	"strings"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/pkg/textutil"
)

// Split cuts text into sentence-aligned chunks of at most maxTokens
// estimated tokens.
//
// When a chunk closes, the next one is seeded with the trailing sentences of
// the closed chunk that fit in overlapTokens. A sentence that alone exceeds
// maxTokens is cut into fixed rune windows; those chunks are marked as
// sentence splits and take part in no overlap. Text that fits the budget
// comes back as a single chunk equal to the input.
func Split(text string, maxTokens, overlapTokens int) ([]entities.Chunk, error) {
	if maxTokens <= 0 {
		return nil, entities.ErrInvalidBudget
	}
	overlapTokens = max(overlapTokens, 0)

	sentences := textutil.SplitSentences(text)
	if EstimateTokens(text) <= maxTokens {
		return []entities.Chunk{{
			ID:              0,
			Text:            text,
			EstimatedTokens: EstimateTokens(text),
			SentenceStart:   0,
			SentenceEnd:     len(sentences) - 1,
		}}, nil
	}

	s := &splitter{
		sentences:     sentences,
		costs:         make([]int, len(sentences)),
		budget:        maxTokens * 10,
		overlapBudget: overlapTokens * 10,
		maxTokens:     maxTokens,
	}
	for i, sent := range sentences {
		s.costs[i] = estimateTenths(sent)
	}
	return s.run(), nil
}

type splitter struct {
	sentences     []string
	costs         []int // tenths per sentence
	budget        int   // tenths
	overlapBudget int   // tenths
	maxTokens     int

	chunks []entities.Chunk
	cur    []int // sentence indices of the open chunk
	curT   int   // tenths of the open chunk, separators included
	seeded bool
}

func (s *splitter) run() []entities.Chunk {
	for i, cost := range s.costs {
		if cost > s.budget {
			s.close()
			s.forceSplit(s.sentences[i])
			continue
		}

		add := cost
		if len(s.cur) > 0 {
			add += spaceJoin
		}
		if s.curT+add <= s.budget {
			s.cur = append(s.cur, i)
			s.curT += add
			continue
		}

		closed := s.cur
		s.close()
		s.cur = s.overlap(closed, cost)
		s.seeded = len(s.cur) > 0
		s.curT = s.costOf(s.cur)
		if len(s.cur) > 0 {
			s.curT += spaceJoin
		}
		s.cur = append(s.cur, i)
		s.curT += cost
	}
	s.close()
	return s.chunks
}

// overlap picks the trailing sentences of closed that fit the overlap
// budget, dropping the earliest ones until next still fits after them.
func (s *splitter) overlap(closed []int, next int) []int {
	if s.overlapBudget == 0 || len(closed) == 0 {
		return nil
	}

	start := len(closed)
	total := 0
	for j := len(closed) - 1; j >= 0; j-- {
		add := s.costs[closed[j]]
		if start < len(closed) {
			add += spaceJoin
		}
		if total+add > s.overlapBudget {
			break
		}
		total += add
		start = j
	}

	picked := closed[start:]
	for len(picked) > 0 && s.costOf(picked)+spaceJoin+next > s.budget {
		picked = picked[1:]
	}
	return append([]int(nil), picked...)
}

func (s *splitter) costOf(idx []int) int {
	if len(idx) == 0 {
		return 0
	}
	total := spaceJoin * (len(idx) - 1)
	for _, i := range idx {
		total += s.costs[i]
	}
	return total
}

func (s *splitter) close() {
	if len(s.cur) > 0 {
		parts := make([]string, len(s.cur))
		for k, i := range s.cur {
			parts[k] = s.sentences[i]
		}
		text := strings.Join(parts, " ")
		s.chunks = append(s.chunks, entities.Chunk{
			ID:              len(s.chunks),
			Text:            text,
			EstimatedTokens: EstimateTokens(text),
			SentenceStart:   s.cur[0],
			SentenceEnd:     s.cur[len(s.cur)-1],
			HasOverlap:      s.seeded,
		})
	}
	s.cur = nil
	s.curT = 0
	s.seeded = false
}

// forceSplit cuts one oversized sentence into rune windows sized for the
// most expensive rune class.
func (s *splitter) forceSplit(sentence string) {
	window := max(1, s.budget/hangulWeight)
	runes := []rune(sentence)
	for start := 0; start < len(runes); start += window {
		text := strings.TrimSpace(string(runes[start:min(start+window, len(runes))]))
		if text == "" {
			continue
		}
		s.chunks = append(s.chunks, entities.Chunk{
			ID:              len(s.chunks),
			Text:            text,
			EstimatedTokens: EstimateTokens(text),
			SentenceStart:   entities.SentenceSplitIndex,
			SentenceEnd:     entities.SentenceSplitIndex,
			IsSentenceSplit: true,
		})
	}
}
