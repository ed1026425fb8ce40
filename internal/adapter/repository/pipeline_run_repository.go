package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
)

const maxListLimit = 100

// PipelineRunRepository handles pipeline run data operations
type PipelineRunRepository struct {
	db *gorm.DB
}

var _ repositories.PipelineRunRepository = (*PipelineRunRepository)(nil)

// NewPipelineRunRepository creates a new pipeline run repository
func NewPipelineRunRepository(db *gorm.DB) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

// Create creates a new pipeline run
func (r *PipelineRunRepository) Create(ctx context.Context, run *entities.PipelineRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves status, timing and metadata of a run
func (r *PipelineRunRepository) Update(ctx context.Context, run *entities.PipelineRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.PipelineRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":       run.Status,
			"completed_at": run.CompletedAt,
			"last_error":   run.LastError,
			"metadata":     run.Metadata,
			"updated_at":   run.UpdatedAt,
		}).Error
}

// FindByID retrieves a run by ID
func (r *PipelineRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error) {
	var run entities.PipelineRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the most recently started runs
func (r *PipelineRunRepository) ListRecent(ctx context.Context, limit int) ([]*entities.PipelineRun, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var runs []*entities.PipelineRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
