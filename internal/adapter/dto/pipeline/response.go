package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/usecase/models"
)

// NoiseRecordsResponse lists the audit trail of one run
type NoiseRecordsResponse struct {
	RunID   uuid.UUID              `json:"run_id"`
	Count   int                    `json:"count"`
	Records []entities.NoiseRecord `json:"records"`
}

// ModelsResponse reports the load state of every registered model
type ModelsResponse struct {
	Models []models.Status `json:"models"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Storage     string `json:"storage,omitempty"`
}

// RunResponse describes one pipeline run
type RunResponse struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Status       string                `json:"status"`
	StartedAt    time.Time             `json:"started_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	DurationMs   int64                 `json:"duration_ms,omitempty"`
	Error        string                `json:"error,omitempty"`
	Utterances   int                   `json:"utterances,omitempty"`
	Stats        *entities.FilterStats `json:"stats,omitempty"`
	TotalChunks  int                   `json:"total_chunks,omitempty"`
	FailedChunks []int                 `json:"failed_chunks,omitempty"`
}

// RunListResponse lists recent runs
type RunListResponse struct {
	Runs  []*RunResponse `json:"runs"`
	Count int            `json:"count"`
}

// AnalysisResponse is a stored analysis with its chunking summary
type AnalysisResponse struct {
	ID              string                  `json:"id"`
	RunID           string                  `json:"run_id"`
	Result          entities.AnalysisResult `json:"result"`
	ChunkingApplied bool                    `json:"chunking_applied"`
	TotalChunks     int                     `json:"total_chunks"`
	FailedChunks    int                     `json:"failed_chunks"`
	OriginalTokens  int                     `json:"original_tokens"`
	CreatedAt       time.Time               `json:"created_at"`
}
