package chunking

import (
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(summary string, items ...entities.ActionItem) entities.AnalysisResult {
	return entities.AnalysisResult{
		Summary:      summary,
		ActionItems:  items,
		Decisions:    []string{},
		KeyPoints:    []string{},
		NextSteps:    []string{},
		Participants: []string{},
	}
}

func TestMerge_SingleResultIsIdentity(t *testing.T) {
	single := result("Only chunk.", entities.ActionItem{Task: "Draft the proposal", Priority: "low"})
	single.Decisions = []string{"Go with option B"}

	merged := NewMerger(nil).Merge([]entities.AnalysisResult{single}, nil)
	assert.Equal(t, single, merged)
}

func TestMerge_Empty(t *testing.T) {
	merged := NewMerger(nil).Merge(nil, nil)
	assert.True(t, merged.Failed())
}

func TestMerge_DedupsActionItemsByNormalizedTask(t *testing.T) {
	a := result("Part one.", entities.ActionItem{Task: "Draft the proposal", Assignee: "kim"})
	b := result("Part two.", entities.ActionItem{Task: "draft the proposal ", Assignee: "lee"})

	merged := NewMerger(nil).Merge([]entities.AnalysisResult{a, b}, nil)
	require.Len(t, merged.ActionItems, 1)
	assert.Equal(t, "kim", merged.ActionItems[0].Assignee)
	require.NotNil(t, merged.ActionItems[0].SourceChunk)
	assert.Equal(t, 0, *merged.ActionItems[0].SourceChunk)
}

func TestMerge_TagsSourceChunkAndSortsByPriority(t *testing.T) {
	a := result("", entities.ActionItem{Task: "Book room", Priority: "low"}, entities.ActionItem{Task: "Fix login", Priority: "High"})
	b := result("", entities.ActionItem{Task: "Write notes"}, entities.ActionItem{Task: "Review budget", Priority: "medium"})

	merged := NewMerger(nil).Merge([]entities.AnalysisResult{a, b}, nil)

	tasks := make([]string, len(merged.ActionItems))
	sources := make([]int, len(merged.ActionItems))
	for i, item := range merged.ActionItems {
		tasks[i] = item.Task
		sources[i] = *item.SourceChunk
	}
	assert.Equal(t, []string{"Fix login", "Review budget", "Book room", "Write notes"}, tasks)
	assert.Equal(t, []int{0, 1, 0, 1}, sources)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := result("a", entities.ActionItem{Task: "One"})
	b := result("b", entities.ActionItem{Task: "Two"})
	_ = NewMerger(nil).Merge([]entities.AnalysisResult{a, b}, nil)
	assert.Nil(t, a.ActionItems[0].SourceChunk)
}

func TestMerge_StringListsAreSets(t *testing.T) {
	a := result("a")
	a.Decisions = []string{"Launch in May", "Hire two engineers"}
	a.Participants = []string{"kim", "lee"}
	b := result("b")
	b.Decisions = []string{"Launch in May ", "Cut scope"}
	b.Participants = []string{"lee", "park"}

	merged := NewMerger(nil).Merge([]entities.AnalysisResult{a, b}, nil)
	assert.Equal(t, []string{"Launch in May", "Hire two engineers", "Cut scope"}, merged.Decisions)
	assert.Equal(t, []string{"kim", "lee", "park"}, merged.Participants)
}

func TestMerge_SummaryConcatenationAndDefault(t *testing.T) {
	merged := NewMerger(nil).Merge([]entities.AnalysisResult{result(" First part. "), result(""), result("Second part.")}, nil)
	assert.Equal(t, "First part. Second part.", merged.Summary)

	merged = NewMerger(nil).Merge([]entities.AnalysisResult{result(""), result("")}, nil)
	assert.Equal(t, DefaultMergedSummary, merged.Summary)
}

type bulletMerger struct{}

func (bulletMerger) MergeSummaries(s []string) string { return "- " + strings.Join(s, "\n- ") }

func TestMerge_SwappableSummaryStrategy(t *testing.T) {
	merged := NewMerger(bulletMerger{}).Merge([]entities.AnalysisResult{result("a"), result("b")}, nil)
	assert.Equal(t, "- a\n- b", merged.Summary)
}

func TestMerge_FailedChunksAreRecorded(t *testing.T) {
	ok := result("Worked.", entities.ActionItem{Task: "Ship it"})
	failed := entities.NewFailedAnalysis("JSON parsing failed: boom", "not json")
	chunks := []entities.Chunk{
		{ID: 0, EstimatedTokens: 120},
		{ID: 1, EstimatedTokens: 80, HasOverlap: true},
	}

	merged := NewMerger(nil).Merge([]entities.AnalysisResult{ok, failed}, chunks)
	assert.False(t, merged.Failed())
	assert.Equal(t, "Worked.", merged.Summary)
	require.NotNil(t, merged.Metadata)
	assert.Equal(t, []int{1}, merged.Metadata.FailedChunks)
	assert.True(t, merged.Metadata.ChunkingApplied)
	assert.Equal(t, 2, merged.Metadata.TotalChunks)
	assert.Equal(t, []int{120, 80}, merged.Metadata.ChunkTokens)
	assert.Equal(t, entities.ProcessingMethodChunked, merged.Metadata.ProcessingMethod)
	assert.True(t, merged.Metadata.ChunksInfo[1].HasOverlap)
}

func TestMerge_AllChunksFailed(t *testing.T) {
	f := entities.NewFailedAnalysis("boom", "")
	merged := NewMerger(nil).Merge([]entities.AnalysisResult{f, f}, nil)
	assert.True(t, merged.Failed())
	assert.Equal(t, []int{0, 1}, merged.Metadata.FailedChunks)
}

func TestTaskKey(t *testing.T) {
	assert.Equal(t, TaskKey("Draft the proposal"), TaskKey("  draft THE proposal "))
	assert.Equal(t, TaskKey("École"), TaskKey("ÉCOLE"))
}
