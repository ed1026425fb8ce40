package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 500

// NoiseRecordRepository handles noise audit trail data operations
type NoiseRecordRepository struct {
	db *gorm.DB
}

var _ repositories.NoiseRecordRepository = (*NoiseRecordRepository)(nil)

// NewNoiseRecordRepository creates a new noise record repository
func NewNoiseRecordRepository(db *gorm.DB) *NoiseRecordRepository {
	return &NoiseRecordRepository{db: db}
}

// CreateBatch stores discarded records of one run
func (r *NoiseRecordRepository) CreateBatch(ctx context.Context, records []entities.NoiseRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if rec.RunID == uuid.Nil {
			return errors.New("noise record without run id")
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(records, insertBatchSize).Error
}

// FindByRunID returns a run's records in order_key order
func (r *NoiseRecordRepository) FindByRunID(ctx context.Context, runID uuid.UUID) ([]entities.NoiseRecord, error) {
	var records []entities.NoiseRecord
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entities.SortNoiseRecords(records)
	return records, nil
}

// CountByRunID returns the number of records stored for a run
func (r *NoiseRecordRepository) CountByRunID(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.NoiseRecord{}).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}
