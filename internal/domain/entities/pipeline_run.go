package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PipelineRunStatus represents the status of a pipeline run
type PipelineRunStatus string

const (
	PipelineRunStatusRunning   PipelineRunStatus = "running"
	PipelineRunStatusCompleted PipelineRunStatus = "completed"
	PipelineRunStatusDegraded  PipelineRunStatus = "degraded" // finished, but an optional stage was skipped
	PipelineRunStatusFailed    PipelineRunStatus = "failed"
)

// PipelineRunType identifies which pipeline produced the run
type PipelineRunType string

const (
	PipelineRunTypeFilter   PipelineRunType = "filter"
	PipelineRunTypeAudio    PipelineRunType = "audio"
	PipelineRunTypeAnalysis PipelineRunType = "analysis"
)

// PipelineRun is one invocation of a filtering or analysis pipeline.
type PipelineRun struct {
	ID          uuid.UUID           `json:"id" gorm:"type:uuid;primary_key"`
	RunType     PipelineRunType     `json:"run_type" gorm:"type:varchar(32);not null;index"`
	Status      PipelineRunStatus   `json:"status" gorm:"type:varchar(32);not null;index"`
	StartedAt   time.Time           `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	LastError   *string             `json:"last_error,omitempty" gorm:"type:text"`
	Metadata    PipelineRunMetadata `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// PipelineRunMetadata stores the per-run numbers
type PipelineRunMetadata struct {
	Utterances       int          `json:"utterances,omitempty"`
	Stats            *FilterStats `json:"stats,omitempty"`
	TotalChunks      int          `json:"total_chunks,omitempty"`
	FailedChunks     []int        `json:"failed_chunks,omitempty"`
	ProcessingTimeMs int64        `json:"processing_time_ms,omitempty"`
}

// Scan implements sql.Scanner interface for GORM
func (m *PipelineRunMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return nil
	}
}

// Value implements driver.Valuer interface for GORM
func (m PipelineRunMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NewPipelineRun creates a running pipeline run with the given id.
func NewPipelineRun(id uuid.UUID, runType PipelineRunType) *PipelineRun {
	now := time.Now()
	return &PipelineRun{
		ID:        id,
		RunType:   runType,
		Status:    PipelineRunStatusRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkAsCompleted finishes the run. A degraded run still produced output.
func (r *PipelineRun) MarkAsCompleted(degraded bool) {
	r.Status = PipelineRunStatusCompleted
	if degraded {
		r.Status = PipelineRunStatusDegraded
	}
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.Metadata.ProcessingTimeMs = now.Sub(r.StartedAt).Milliseconds()
}

// MarkAsFailed marks run as failed with error message
func (r *PipelineRun) MarkAsFailed(errMsg string) {
	r.Status = PipelineRunStatusFailed
	r.LastError = &errMsg
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// IsFinished reports whether the run reached a terminal status.
func (r *PipelineRun) IsFinished() bool {
	return r.Status != PipelineRunStatusRunning
}

// TableName specifies the table name for GORM
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
