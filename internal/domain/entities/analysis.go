package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action item priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ActionItem is a task extracted from a meeting.
// SourceChunk is set when the item came from a chunked analysis.
type ActionItem struct {
	Task        string `json:"task"`
	Assignee    string `json:"assignee,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Priority    string `json:"priority,omitempty"`
	SourceChunk *int   `json:"source_chunk,omitempty"`
}

// AnalysisResult represents the structured output of meeting analysis.
// A failed generation or parse leaves Error and RawResponse set and the
// content fields empty.
type AnalysisResult struct {
	Summary      string            `json:"summary"`
	ActionItems  []ActionItem      `json:"action_items"`
	Decisions    []string          `json:"decisions"`
	KeyPoints    []string          `json:"key_points"`
	NextSteps    []string          `json:"next_steps"`
	Participants []string          `json:"participants"`
	Error        string            `json:"error,omitempty"`
	RawResponse  string            `json:"raw_response,omitempty"`
	Metadata     *AnalysisMetadata `json:"metadata,omitempty"`
}

// Failed reports whether the result is a failure payload.
func (r AnalysisResult) Failed() bool {
	return r.Error != ""
}

// NewFailedAnalysis builds the failure payload for one generation.
func NewFailedAnalysis(errMsg, raw string) AnalysisResult {
	return AnalysisResult{
		ActionItems:  []ActionItem{},
		Decisions:    []string{},
		KeyPoints:    []string{},
		NextSteps:    []string{},
		Participants: []string{},
		Error:        errMsg,
		RawResponse:  raw,
	}
}

// Processing methods recorded in AnalysisMetadata.
const (
	ProcessingMethodDirect  = "direct"
	ProcessingMethodChunked = "chunked"
)

// AnalysisMetadata describes how a result was produced.
type AnalysisMetadata struct {
	ChunkingApplied  bool        `json:"chunking_applied"`
	TotalChunks      int         `json:"total_chunks"`
	ChunkTokens      []int       `json:"chunk_tokens,omitempty"`
	ChunksInfo       []ChunkInfo `json:"chunks_info,omitempty"`
	FailedChunks     []int       `json:"failed_chunks,omitempty"`
	OriginalTokens   int         `json:"original_tokens"`
	ProcessingMethod string      `json:"processing_method"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
}

// MeetingAnalysis is a stored analysis result.
type MeetingAnalysis struct {
	ID              uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RunID           uuid.UUID                          `json:"run_id" gorm:"type:uuid;not null;index"`
	Result          datatypes.JSONType[AnalysisResult] `json:"result" gorm:"type:jsonb"`
	ChunkingApplied bool                               `json:"chunking_applied" gorm:"default:false"`
	TotalChunks     int                                `json:"total_chunks" gorm:"default:1"`
	FailedChunks    int                                `json:"failed_chunks" gorm:"default:0"`
	OriginalTokens  int                                `json:"original_tokens"`
	CreatedAt       time.Time                          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingAnalysis) TableName() string {
	return "meeting_analyses"
}

// NewMeetingAnalysis wraps a result for storage.
func NewMeetingAnalysis(runID uuid.UUID, result AnalysisResult) *MeetingAnalysis {
	analysis := &MeetingAnalysis{
		ID:          uuid.New(),
		RunID:       runID,
		Result:      datatypes.NewJSONType(result),
		TotalChunks: 1,
		CreatedAt:   time.Now(),
	}
	if md := result.Metadata; md != nil {
		analysis.ChunkingApplied = md.ChunkingApplied
		analysis.TotalChunks = md.TotalChunks
		analysis.FailedChunks = len(md.FailedChunks)
		analysis.OriginalTokens = md.OriginalTokens
	}
	return analysis
}
