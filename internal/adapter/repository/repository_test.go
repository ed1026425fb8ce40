package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

// openTestDB connects to TEST_DATABASE_DSN, skipping when it is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.PipelineRun{}, &entities.NoiseRecord{}, &entities.MeetingAnalysis{}))
	return db
}

func TestNoiseRecordRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewNoiseRecordRepository(db)
	ctx := context.Background()
	runID := uuid.New()

	records := []entities.NoiseRecord{
		{ID: uuid.New(), RunID: runID, Timestamp: "00:00:10", OrderKey: "2-10", Speaker: "A", Text: "bye", Label: entities.LabelNoise, Confidence: 0.9},
		{ID: uuid.New(), RunID: runID, Timestamp: "00:00:02", OrderKey: "2-2", Speaker: "A", Text: "hi", Label: entities.LabelNoise, Confidence: 0.8},
	}
	require.NoError(t, repo.CreateBatch(ctx, records))

	got, err := repo.FindByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2-2", got[0].OrderKey)

	count, err := repo.CountByRunID(ctx, runID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	assert.Error(t, repo.CreateBatch(ctx, []entities.NoiseRecord{{ID: uuid.New()}}))
}

func TestNoiseRecordRepository_LongFreeFormFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewNoiseRecordRepository(db)
	ctx := context.Background()
	runID := uuid.New()

	speaker := strings.Repeat("Dr. Example Speaker ", 20)
	records := []entities.NoiseRecord{{
		ID:         uuid.New(),
		RunID:      runID,
		Timestamp:  "2024-05-01T10:00:00.000000+07:00",
		OrderKey:   "2024-05-01T10:00:00.000000+07:00-1",
		Speaker:    speaker,
		Text:       "uh huh",
		Label:      entities.LabelNoise,
		Confidence: 0.7,
	}}
	require.NoError(t, repo.CreateBatch(ctx, records))

	got, err := repo.FindByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-05-01T10:00:00.000000+07:00", got[0].Timestamp)
	assert.Equal(t, speaker, got[0].Speaker)
}

func TestAnalysisRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	analysis := entities.NewMeetingAnalysis(uuid.New(), entities.AnalysisResult{Summary: "Stored."})
	require.NoError(t, repo.Create(ctx, analysis))

	got, err := repo.FindByID(ctx, analysis.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Stored.", got.Result.Data().Summary)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPipelineRunRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewPipelineRunRepository(db)
	ctx := context.Background()

	run := entities.NewPipelineRun(uuid.New(), entities.PipelineRunTypeFilter)
	require.NoError(t, repo.Create(ctx, run))

	run.Metadata.Utterances = 5
	run.MarkAsCompleted(true)
	require.NoError(t, repo.Update(ctx, run))

	got, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.PipelineRunStatusDegraded, got.Status)
	assert.Equal(t, 5, got.Metadata.Utterances)

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}
