package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

// ErrObjectNotFound is returned by object stores for a key that does not exist.
var ErrObjectNotFound = errors.New("object not found")

// NoiseRecordRepository persists the audit trail of discarded utterances
type NoiseRecordRepository interface {
	// CreateBatch stores discarded records of one run
	CreateBatch(ctx context.Context, records []entities.NoiseRecord) error

	// FindByRunID returns a run's records in order_key order
	FindByRunID(ctx context.Context, runID uuid.UUID) ([]entities.NoiseRecord, error)

	// CountByRunID returns the number of records stored for a run
	CountByRunID(ctx context.Context, runID uuid.UUID) (int64, error)
}

// AnalysisRepository persists merged analysis results
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entities.MeetingAnalysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingAnalysis, error)
	FindByRunID(ctx context.Context, runID uuid.UUID) (*entities.MeetingAnalysis, error)
}

// PipelineRunRepository tracks pipeline executions
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entities.PipelineRun) error
	Update(ctx context.Context, run *entities.PipelineRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error)
	ListRecent(ctx context.Context, limit int) ([]*entities.PipelineRun, error)
}
