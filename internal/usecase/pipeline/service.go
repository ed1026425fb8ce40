// Package pipeline composes the transcript stages into the filtering and
// analysis pipelines.
package pipeline

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/errors"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-filter/internal/usecase/classifier"
	"github.com/johnquangdev/meeting-filter/internal/usecase/filter"
	"github.com/johnquangdev/meeting-filter/internal/usecase/models"
	"github.com/johnquangdev/meeting-filter/internal/usecase/transcript"
	"github.com/johnquangdev/meeting-filter/internal/usecase/triplet"
	"github.com/johnquangdev/meeting-filter/pkg/ai"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
)

// Transcriber turns recorded audio into timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL, languageCode string) (*ai.TranscriptionResult, error)
}

// Analyzer produces structured analysis for transcript text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (entities.AnalysisResult, error)
}

// Service defines the pipeline use cases
type Service interface {
	// FilterSegments filters a speech-to-text segment list
	FilterSegments(ctx context.Context, segments []entities.Segment, opts FilterOptions) (*FilterOutput, error)

	// FilterText filters plain or "SPEAKER: text" lines
	FilterText(ctx context.Context, text string, opts FilterOptions) (*FilterOutput, error)

	// FilterJSONL filters one JSON object per line
	FilterJSONL(ctx context.Context, r io.Reader, opts FilterOptions) (*FilterOutput, error)

	// FilterAudio transcribes audio and filters the result
	FilterAudio(ctx context.Context, audioURL, languageCode string, opts FilterOptions) (*FilterOutput, error)

	// Analyze runs the long-text analysis, optionally filtering first
	Analyze(ctx context.Context, text string, filterFirst bool) (*AnalysisOutput, error)

	// NoiseRecords returns the persisted audit trail of a run
	NoiseRecords(ctx context.Context, runID uuid.UUID) ([]entities.NoiseRecord, error)

	// GetAnalysis returns a stored analysis
	GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.MeetingAnalysis, error)

	// GetRun returns a tracked run
	GetRun(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error)

	// ListRuns returns the most recent runs, newest first
	ListRuns(ctx context.Context, limit int) ([]*entities.PipelineRun, error)
}

var _ Service = (*PipelineService)(nil)

// FilterOptions tunes one filtering run.
type FilterOptions struct {
	BatchSize int
}

// FilterOutput is the result of a filtering run.
type FilterOutput struct {
	RunID        uuid.UUID                `json:"run_id"`
	FilteredText string                   `json:"filtered_text"`
	Kept         []entities.KeptUtterance `json:"kept"`
	Stats        entities.FilterStats     `json:"stats"`
}

// AnalysisOutput is the result of an analysis run.
type AnalysisOutput struct {
	RunID      uuid.UUID               `json:"run_id"`
	AnalysisID *uuid.UUID              `json:"analysis_id,omitempty"`
	Filter     *entities.FilterStats   `json:"filter_stats,omitempty"`
	Result     entities.AnalysisResult `json:"result"`
}

var errStoreDisabled = stdErrors.New("database is not configured")

// Deps are the collaborators of a PipelineService. All of them are optional:
// a nil classifier means pass-through filtering and nil repositories skip
// persistence.
type Deps struct {
	Classifier  *models.Lazy[*classifier.Adapter]
	Transcriber *models.Lazy[Transcriber]
	Analyzer    *models.Lazy[Analyzer]

	Sink     filter.AuditSink
	Stages   *StageRecorder
	Runs     repositories.PipelineRunRepository
	Noise    repositories.NoiseRecordRepository
	Analyses repositories.AnalysisRepository
	// Objects serves NoiseRecords from the JSONL audit objects when there is
	// no database.
	Objects filter.ObjectReader

	BatchSize    int
	LanguageCode string
	Logger       *zap.Logger
	Metrics      *metrics.PipelineMetrics
}

// PipelineService runs the filtering and analysis pipelines.
type PipelineService struct {
	deps       Deps
	normalizer *transcript.Normalizer
	stage      *filter.Stage
	logger     *zap.Logger
	metrics    *metrics.PipelineMetrics
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(deps Deps) *PipelineService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = classifier.DefaultBatchSize
	}
	return &PipelineService{
		deps:       deps,
		normalizer: transcript.NewNormalizer(logger),
		stage:      filter.NewStage(logger, deps.Metrics),
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

func (s *PipelineService) FilterSegments(ctx context.Context, segments []entities.Segment, opts FilterOptions) (*FilterOutput, error) {
	utterances := s.normalizer.FromSegments(segments)
	return s.runFilter(ctx, entities.PipelineRunTypeFilter, utterances, "", opts)
}

func (s *PipelineService) FilterText(ctx context.Context, text string, opts FilterOptions) (*FilterOutput, error) {
	utterances := s.normalizer.FromText(text)
	return s.runFilter(ctx, entities.PipelineRunTypeFilter, utterances, text, opts)
}

func (s *PipelineService) FilterJSONL(ctx context.Context, r io.Reader, opts FilterOptions) (*FilterOutput, error) {
	utterances, err := s.normalizer.FromJSONL(r)
	if err != nil {
		return nil, errors.ErrInvalidArgument(fmt.Sprintf("read jsonl transcript: %v", err))
	}
	return s.runFilter(ctx, entities.PipelineRunTypeFilter, utterances, "", opts)
}

func (s *PipelineService) FilterAudio(ctx context.Context, audioURL, languageCode string, opts FilterOptions) (*FilterOutput, error) {
	if s.deps.Transcriber == nil {
		return nil, errors.ErrAIServiceUnavailable(models.NameTranscriber)
	}
	stt, err := s.deps.Transcriber.Get(ctx)
	if err != nil {
		s.logger.Warn("transcriber unavailable", zap.Error(err))
		return nil, errors.ErrAIServiceUnavailable(models.NameTranscriber)
	}
	if languageCode == "" {
		languageCode = s.deps.LanguageCode
	}

	start := time.Now()
	result, err := stt.Transcribe(ctx, audioURL, languageCode)
	s.metrics.ObserveStage("transcribe", time.Since(start).Seconds())
	if err != nil {
		return nil, errors.ErrAITranscriptionFailed(err)
	}

	segments := make([]entities.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = entities.NewSegment(seg.Speaker, seg.Text, seg.Start, seg.End)
	}
	s.logger.Info("audio transcribed",
		zap.String("transcript_id", result.ID),
		zap.Int("segments", len(segments)),
	)
	return s.runFilter(ctx, entities.PipelineRunTypeAudio, s.normalizer.FromSegments(segments), "", opts)
}

// runFilter wraps one filtering pass in a tracked run. Input without any
// utterance gives an empty result.
func (s *PipelineService) runFilter(ctx context.Context, runType entities.PipelineRunType, utterances []entities.Utterance, original string, opts FilterOptions) (*FilterOutput, error) {
	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(ctx, runID, string(runType), 0)
	defer cancel()
	run := s.beginRun(ctx, runID, runType)

	if len(utterances) == 0 {
		s.logger.Info("transcript has no utterances", zap.String("run_id", runID.String()))
		stats := entities.FilterStats{ClassifierAvailable: s.deps.Classifier != nil}
		run.Metadata.Stats = &stats
		s.finishRun(ctx, run, !stats.ClassifierAvailable)
		return &FilterOutput{RunID: runID, Kept: []entities.KeptUtterance{}, Stats: stats}, nil
	}

	res := s.filter(ctx, utterances, opts.BatchSize)
	text := filter.FilteredText(res.Kept)
	if !res.Stats.ClassifierAvailable && original != "" {
		text = original
	}

	run.Metadata.Utterances = len(utterances)
	run.Metadata.Stats = &res.Stats
	s.finishRun(ctx, run, !res.Stats.ClassifierAvailable || res.Stats.AuditFailed)

	return &FilterOutput{
		RunID:        runID,
		FilteredText: text,
		Kept:         res.Kept,
		Stats:        res.Stats,
	}, nil
}

// filter runs triplet building, classification and filtering. Without a
// loadable classifier every utterance is passed through.
func (s *PipelineService) filter(ctx context.Context, utterances []entities.Utterance, batchSize int) filter.Result {
	s.deps.Stages.Record(ctx, StageUtterances, utterances)

	adapter, err := s.loadClassifier(ctx)
	if err != nil {
		s.logger.Warn("classifier unavailable, passing transcript through", zap.Error(err))
		res := filter.PassThrough(utterances)
		s.deps.Stages.Record(ctx, StageKept, res.Kept)
		return res
	}
	if batchSize <= 0 {
		batchSize = s.deps.BatchSize
	}

	start := time.Now()
	triplets := triplet.Build(utterances)
	s.deps.Stages.Record(ctx, StageTriplets, triplets)

	classified := adapter.Classify(ctx, triplets, batchSize)
	s.metrics.ObserveStage("classify", time.Since(start).Seconds())
	s.deps.Stages.Record(ctx, StageClassified, classified)

	start = time.Now()
	res := s.stage.Filter(ctx, classified, s.deps.Sink)
	s.metrics.ObserveStage("filter", time.Since(start).Seconds())
	s.deps.Stages.Record(ctx, StageKept, res.Kept)

	s.logger.Info("transcript filtered",
		zap.Int("triplets", res.Stats.TotalTriplets),
		zap.Int("kept", res.Stats.Kept),
		zap.Int("discarded", res.Stats.Discarded),
		zap.Float64("noise_ratio", res.Stats.NoiseRatio),
	)
	return res
}

func (s *PipelineService) loadClassifier(ctx context.Context) (*classifier.Adapter, error) {
	if s.deps.Classifier == nil {
		return nil, stdErrors.New("no classifier configured")
	}
	return s.deps.Classifier.Get(ctx)
}

func (s *PipelineService) Analyze(ctx context.Context, text string, filterFirst bool) (*AnalysisOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.ErrEmptyTranscript()
	}
	if s.deps.Analyzer == nil {
		return nil, errors.ErrAIServiceUnavailable(models.NameGenerator)
	}
	analyzer, err := s.deps.Analyzer.Get(ctx)
	if err != nil {
		s.logger.Warn("generator unavailable", zap.Error(err))
		return nil, errors.ErrAIServiceUnavailable(models.NameGenerator)
	}

	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(ctx, runID, string(entities.PipelineRunTypeAnalysis), 0)
	defer cancel()
	run := s.beginRun(ctx, runID, entities.PipelineRunTypeAnalysis)
	out := &AnalysisOutput{RunID: runID}

	if filterFirst {
		if utterances := s.normalizer.FromText(text); len(utterances) > 0 {
			res := s.filter(ctx, utterances, 0)
			out.Filter = &res.Stats
			run.Metadata.Utterances = len(utterances)
			run.Metadata.Stats = &res.Stats
			if res.Stats.ClassifierAvailable {
				text = filter.FilteredText(res.Kept)
			}
		}
	}

	start := time.Now()
	result, err := analyzer.Analyze(ctx, text)
	s.metrics.ObserveStage("analyze", time.Since(start).Seconds())
	if err != nil {
		s.failRun(ctx, run, err)
		if stdErrors.Is(err, entities.ErrEmptyText) {
			return nil, errors.ErrEmptyTranscript()
		}
		return nil, errors.ErrAIAnalysisFailed(err)
	}
	out.Result = result

	if md := result.Metadata; md != nil {
		run.Metadata.TotalChunks = md.TotalChunks
		run.Metadata.FailedChunks = md.FailedChunks
	}
	if s.deps.Analyses != nil {
		analysis := entities.NewMeetingAnalysis(runID, result)
		if err := s.deps.Analyses.Create(ctx, analysis); err != nil {
			s.logger.Error("failed to store analysis", zap.String("run_id", runID.String()), zap.Error(err))
		} else {
			out.AnalysisID = &analysis.ID
		}
	}

	degraded := result.Failed() || (out.Filter != nil && !out.Filter.ClassifierAvailable)
	if md := result.Metadata; md != nil && len(md.FailedChunks) > 0 {
		degraded = true
	}
	s.finishRun(ctx, run, degraded)
	return out, nil
}

func (s *PipelineService) NoiseRecords(ctx context.Context, runID uuid.UUID) ([]entities.NoiseRecord, error) {
	switch {
	case s.deps.Noise != nil:
		records, err := s.deps.Noise.FindByRunID(ctx, runID)
		if err != nil {
			return nil, errors.ErrDBQueryFailed("find noise records", err)
		}
		return records, nil
	case s.deps.Objects != nil:
		records, err := filter.ReadObjectRecords(ctx, s.deps.Objects, runID)
		if err != nil {
			return nil, errors.ErrStorageFailed("read noise records", err)
		}
		return records, nil
	default:
		return nil, errors.ErrDBConnectionFailed(errStoreDisabled)
	}
}

func (s *PipelineService) GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.MeetingAnalysis, error) {
	if s.deps.Analyses == nil {
		return nil, errors.ErrDBConnectionFailed(errStoreDisabled)
	}
	analysis, err := s.deps.Analyses.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find analysis", err)
	}
	if analysis == nil {
		return nil, errors.ErrNotFound("analysis")
	}
	return analysis, nil
}

func (s *PipelineService) GetRun(ctx context.Context, id uuid.UUID) (*entities.PipelineRun, error) {
	if s.deps.Runs == nil {
		return nil, errors.ErrDBConnectionFailed(errStoreDisabled)
	}
	run, err := s.deps.Runs.FindByID(ctx, id)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("find pipeline run", err)
	}
	if run == nil {
		return nil, errors.ErrNotFound("pipeline run")
	}
	return run, nil
}

func (s *PipelineService) ListRuns(ctx context.Context, limit int) ([]*entities.PipelineRun, error) {
	if s.deps.Runs == nil {
		return nil, errors.ErrDBConnectionFailed(errStoreDisabled)
	}
	runs, err := s.deps.Runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("list pipeline runs", err)
	}
	return runs, nil
}

// Run bookkeeping never fails a pipeline.

func (s *PipelineService) beginRun(ctx context.Context, runID uuid.UUID, runType entities.PipelineRunType) *entities.PipelineRun {
	run := entities.NewPipelineRun(runID, runType)
	if s.deps.Runs != nil {
		if err := s.deps.Runs.Create(ctx, run); err != nil {
			s.logger.Warn("failed to create pipeline run", zap.String("run_id", runID.String()), zap.Error(err))
		}
	}
	return run
}

func (s *PipelineService) finishRun(ctx context.Context, run *entities.PipelineRun, degraded bool) {
	run.MarkAsCompleted(degraded)
	s.saveRun(ctx, run)
	s.logRunEnd(ctx, run)
}

func (s *PipelineService) failRun(ctx context.Context, run *entities.PipelineRun, cause error) {
	run.MarkAsFailed(cause.Error())
	s.saveRun(ctx, run)
	s.logRunEnd(ctx, run)
}

func (s *PipelineService) logRunEnd(ctx context.Context, run *entities.PipelineRun) {
	md := jobcontext.GetRunMetadata(ctx)
	s.logger.Info("pipeline run finished",
		zap.String("run_id", md.RunID.String()),
		zap.String("run_type", md.RunType),
		zap.String("status", string(run.Status)),
		zap.Duration("took", time.Since(md.StartTime)),
	)
}

func (s *PipelineService) saveRun(ctx context.Context, run *entities.PipelineRun) {
	if s.deps.Runs == nil {
		return
	}
	if err := s.deps.Runs.Update(ctx, run); err != nil {
		s.logger.Warn("failed to update pipeline run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}
