package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
	"go.uber.org/zap"
)

// AuditSink receives discarded utterances. Implementations write one
// record per line in the order given.
type AuditSink interface {
	Write(ctx context.Context, records []entities.NoiseRecord) error
}

// Result is the outcome of one filtering pass.
type Result struct {
	Kept      []entities.KeptUtterance
	Discarded []entities.NoiseRecord
	Stats     entities.FilterStats
}

// Stage partitions classified triplets into kept and discarded.
type Stage struct {
	logger  *zap.Logger
	metrics *metrics.PipelineMetrics
}

func NewStage(logger *zap.Logger, m *metrics.PipelineMetrics) *Stage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stage{logger: logger, metrics: m}
}

// Filter keeps every triplet not labeled noise, in input order. Unlabeled
// triplets are kept. Discarded triplets go to sink when one is given; a sink
// failure is logged and flagged in the stats but never fails the pass.
func (s *Stage) Filter(ctx context.Context, triplets []entities.Triplet, sink AuditSink) Result {
	res := Result{
		Kept:  make([]entities.KeptUtterance, 0, len(triplets)),
		Stats: entities.FilterStats{TotalTriplets: len(triplets), ClassifierAvailable: true},
	}

	runID, _ := jobcontext.GetRunID(ctx)
	now := time.Now()
	var (
		confSum float64
		labeled int
	)
	for _, t := range triplets {
		if t.Confidence != nil {
			confSum += *t.Confidence
			labeled++
		}
		if !t.Labeled() {
			res.Stats.Unlabeled++
		}

		if t.IsNoise() {
			res.Discarded = append(res.Discarded, entities.NoiseRecord{
				ID:         uuid.New(),
				RunID:      runID,
				Timestamp:  t.Timestamp,
				OrderKey:   t.OrderKey,
				Speaker:    t.Speaker,
				Text:       t.Text(),
				Label:      *t.Label,
				Confidence: confidenceOf(t),
				CreatedAt:  now,
			})
			continue
		}
		res.Kept = append(res.Kept, entities.KeptUtterance{
			Timestamp: t.Timestamp,
			OrderKey:  t.OrderKey,
			Speaker:   t.Speaker,
			Text:      t.Text(),
		})
	}

	res.Stats.Kept = len(res.Kept)
	res.Stats.Discarded = len(res.Discarded)
	if res.Stats.TotalTriplets > 0 {
		res.Stats.NoiseRatio = float64(res.Stats.Discarded) / float64(res.Stats.TotalTriplets)
	}
	if labeled > 0 {
		res.Stats.AvgConfidence = confSum / float64(labeled)
	}
	s.metrics.RecordFilterOutcome(res.Stats.Kept, res.Stats.Discarded, res.Stats.NoiseRatio)

	if sink != nil && len(res.Discarded) > 0 {
		if err := safeWrite(ctx, sink, res.Discarded); err != nil {
			res.Stats.AuditFailed = true
			s.metrics.RecordAuditWrite("audit", "error")
			s.logger.Error("failed to write noise audit log",
				zap.String("run_id", runID.String()),
				zap.Int("records", len(res.Discarded)),
				zap.Error(err),
			)
		} else {
			s.metrics.RecordAuditWrite("audit", "ok")
		}
	}
	return res
}

// safeWrite calls sink.Write and turns a panic inside it into an error.
func safeWrite(ctx context.Context, sink AuditSink, records []entities.NoiseRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit sink panicked: %v", r)
		}
	}()
	return sink.Write(ctx, records)
}

// PassThrough is the result used when no classifier is available: every
// utterance is kept unlabeled.
func PassThrough(utterances []entities.Utterance) Result {
	kept := make([]entities.KeptUtterance, len(utterances))
	for i, u := range utterances {
		kept[i] = entities.KeptUtterance{
			Timestamp: u.Timestamp,
			OrderKey:  u.OrderKey,
			Speaker:   u.Speaker,
			Text:      u.Text,
		}
	}
	return Result{
		Kept: kept,
		Stats: entities.FilterStats{
			TotalTriplets: len(utterances),
			Kept:          len(utterances),
			Unlabeled:     len(utterances),
		},
	}
}

// FilteredText joins the kept utterances into one transcript string.
func FilteredText(kept []entities.KeptUtterance) string {
	texts := make([]string, len(kept))
	for i, k := range kept {
		texts[i] = k.Text
	}
	return strings.Join(texts, " ")
}

func confidenceOf(t entities.Triplet) float64 {
	if t.Confidence == nil {
		return 0
	}
	return *t.Confidence
}
