package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/internal/usecase/filter"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
)

// Stage snapshots, numbered in pipeline order.
const (
	StageUtterances = "01_utterances"
	StageTriplets   = "02_triplets"
	StageClassified = "03_classified"
	StageKept       = "04_kept"
)

// StageObjectName is where a stage snapshot of a run is stored.
func StageObjectName(runID uuid.UUID, stage string) string {
	return fmt.Sprintf("runs/%s/%s.json", runID, stage)
}

// StageRecorder writes intermediate pipeline output to object storage for
// debugging. A nil recorder records nothing.
type StageRecorder struct {
	uploader filter.ObjectUploader
	logger   *zap.Logger
}

func NewStageRecorder(uploader filter.ObjectUploader, logger *zap.Logger) *StageRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StageRecorder{uploader: uploader, logger: logger}
}

// Record stores v as the stage snapshot of the run in ctx. Failures are
// logged and otherwise ignored.
func (r *StageRecorder) Record(ctx context.Context, stage string, v any) {
	if r == nil || r.uploader == nil {
		return
	}
	runID, _ := jobcontext.GetRunID(ctx)

	b, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		err = r.uploader.UploadText(ctx, StageObjectName(runID, stage), string(b))
	}
	if err != nil {
		r.logger.Warn("failed to record pipeline stage",
			zap.String("run_id", runID.String()),
			zap.String("stage", stage),
			zap.Error(err),
		)
	}
}
