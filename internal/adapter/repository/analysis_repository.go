package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
)

// AnalysisRepository handles meeting analysis data operations
type AnalysisRepository struct {
	db *gorm.DB
}

var _ repositories.AnalysisRepository = (*AnalysisRepository)(nil)

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores a merged analysis result
func (r *AnalysisRepository) Create(ctx context.Context, analysis *entities.MeetingAnalysis) error {
	if analysis == nil {
		return errors.New("analysis cannot be nil")
	}
	return r.db.WithContext(ctx).Create(analysis).Error
}

// FindByID retrieves an analysis by ID
func (r *AnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingAnalysis, error) {
	var analysis entities.MeetingAnalysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// FindByRunID retrieves the latest analysis of a pipeline run
func (r *AnalysisRepository) FindByRunID(ctx context.Context, runID uuid.UUID) (*entities.MeetingAnalysis, error) {
	var analysis entities.MeetingAnalysis
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at DESC").
		First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}
