package chunking

import (
	"fmt"
	"slices"
	"strings"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"golang.org/x/text/cases"
)

// DefaultMergedSummary is used when no chunk produced a summary.
const DefaultMergedSummary = "The meeting was analyzed and its key points are listed below."

// SummaryMerger combines per-chunk summaries into one.
type SummaryMerger interface {
	MergeSummaries(summaries []string) string
}

// ConcatSummaryMerger joins summaries with Separator. It does not
// re-summarize, so long meetings can yield repetitive text.
type ConcatSummaryMerger struct {
	Separator string
}

func (m ConcatSummaryMerger) MergeSummaries(summaries []string) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return DefaultMergedSummary
	}
	return strings.Join(parts, m.Separator)
}

// Merger folds per-chunk analysis results into one result.
type Merger struct {
	summaries SummaryMerger
}

// NewMerger returns a merger using sm, or space concatenation when sm is nil.
func NewMerger(sm SummaryMerger) *Merger {
	if sm == nil {
		sm = ConcatSummaryMerger{Separator: " "}
	}
	return &Merger{summaries: sm}
}

// Merge combines results, where results[i] came from chunks[i]. A single
// result is returned unchanged. Failed chunk results contribute nothing and
// are listed in the metadata.
func (m *Merger) Merge(results []entities.AnalysisResult, chunks []entities.Chunk) entities.AnalysisResult {
	switch len(results) {
	case 0:
		return entities.NewFailedAnalysis("no chunk results to merge", "")
	case 1:
		return results[0]
	}

	merged := entities.AnalysisResult{
		ActionItems:  []entities.ActionItem{},
		Decisions:    []string{},
		KeyPoints:    []string{},
		NextSteps:    []string{},
		Participants: []string{},
	}
	md := &entities.AnalysisMetadata{
		ChunkingApplied:  true,
		TotalChunks:      len(results),
		ProcessingMethod: entities.ProcessingMethodChunked,
	}
	for _, c := range chunks {
		md.ChunkTokens = append(md.ChunkTokens, c.EstimatedTokens)
		md.ChunksInfo = append(md.ChunksInfo, c.Info())
	}

	var summaries []string
	for i, r := range results {
		if r.Failed() {
			md.FailedChunks = append(md.FailedChunks, i)
			continue
		}
		for _, item := range r.ActionItems {
			idx := i
			item.SourceChunk = &idx
			merged.ActionItems = append(merged.ActionItems, item)
		}
		merged.Decisions = append(merged.Decisions, r.Decisions...)
		merged.KeyPoints = append(merged.KeyPoints, r.KeyPoints...)
		merged.NextSteps = append(merged.NextSteps, r.NextSteps...)
		merged.Participants = append(merged.Participants, r.Participants...)
		summaries = append(summaries, r.Summary)
	}

	merged.ActionItems = sortByPriority(dedupActionItems(merged.ActionItems))
	merged.Decisions = dedupStrings(merged.Decisions)
	merged.KeyPoints = dedupStrings(merged.KeyPoints)
	merged.NextSteps = dedupStrings(merged.NextSteps)
	merged.Participants = dedupStrings(merged.Participants)
	merged.Summary = m.summaries.MergeSummaries(summaries)
	merged.Metadata = md

	if len(md.FailedChunks) == len(results) {
		merged.Error = fmt.Sprintf("all %d chunks failed", len(results))
	}
	return merged
}

// TaskKey is the dedup key of an action item: trimmed and case-folded.
func TaskKey(task string) string {
	return cases.Fold().String(strings.TrimSpace(task))
}

// dedupActionItems keeps the first item per task key. Items without a task
// are kept as they are.
func dedupActionItems(items []entities.ActionItem) []entities.ActionItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]entities.ActionItem, 0, len(items))
	for _, item := range items {
		key := TaskKey(item.Task)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

func priorityRank(p string) int {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case entities.PriorityHigh:
		return 0
	case entities.PriorityMedium:
		return 1
	case entities.PriorityLow:
		return 2
	default:
		return 3
	}
}

func sortByPriority(items []entities.ActionItem) []entities.ActionItem {
	slices.SortStableFunc(items, func(a, b entities.ActionItem) int {
		return priorityRank(a.Priority) - priorityRank(b.Priority)
	})
	return items
}

// dedupStrings trims, drops empties and keeps first occurrences in order.
func dedupStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
