package classifier

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/pkg/ai"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize     = 16
	DefaultMaxInputRunes = 512
)

// Predictor is the importance model: label 0 is important, 1 is noise.
// PredictBatch results are index-aligned with texts.
type Predictor interface {
	Predict(ctx context.Context, text string) (ai.Prediction, error)
	PredictBatch(ctx context.Context, texts []string) ([]ai.Prediction, error)
}

// Adapter labels triplets with the importance model.
type Adapter struct {
	predictor Predictor
	maxRunes  int
	logger    *zap.Logger
	metrics   *metrics.PipelineMetrics
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithMaxInputRunes sets the model input length. Non-positive values are ignored.
func WithMaxInputRunes(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxRunes = n
		}
	}
}

func NewAdapter(p Predictor, opts ...Option) *Adapter {
	a := &Adapter{
		predictor: p,
		maxRunes:  DefaultMaxInputRunes,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// InputText builds the model input for a triplet: previous context, bare
// target, next context, truncated to the first maxRunes runes.
func InputText(t entities.Triplet, maxRunes int) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.PrevContext, t.Text(), t.NextContext} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	text := strings.Join(parts, " ")

	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		text = strings.TrimSpace(string([]rune(text)[:maxRunes]))
	}
	return text
}

// Classify returns a copy of triplets with labels and confidences set.
// Each batch is one model call; a failed batch is retried item by item and
// items that still fail are kept as important.
func (a *Adapter) Classify(ctx context.Context, triplets []entities.Triplet, batchSize int) []entities.Triplet {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	out := slices.Clone(triplets)

	for start := 0; start < len(out); start += batchSize {
		batch := out[start:min(start+batchSize, len(out))]

		results, err := a.classifyBatch(ctx, batch)
		if err != nil {
			a.logger.Warn("batch classification failed, falling back to single items",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			a.metrics.RecordBatchFallback()
			results = a.classifySequential(ctx, batch)
		}
		for i := range batch {
			batch[i].Apply(results[i])
		}
	}
	return out
}

// ClassifyOne runs the single-item path. Any failure yields the fail-open verdict.
func (a *Adapter) ClassifyOne(ctx context.Context, t entities.Triplet) entities.ClassificationResult {
	pred, err := a.predictor.Predict(ctx, InputText(t, a.maxRunes))
	if err != nil {
		a.metrics.RecordClassifierCall("single", "error")
		a.logger.Warn("classification failed, keeping utterance",
			zap.String("order_key", t.OrderKey),
			zap.Error(err),
		)
		return entities.FailOpen()
	}

	res, err := toResult(pred)
	if err != nil {
		a.metrics.RecordClassifierCall("single", "invalid")
		a.logger.Warn("invalid classifier output, keeping utterance",
			zap.String("order_key", t.OrderKey),
			zap.Error(err),
		)
		return entities.FailOpen()
	}
	a.metrics.RecordClassifierCall("single", "ok")
	return res
}

func (a *Adapter) classifyBatch(ctx context.Context, batch []entities.Triplet) ([]entities.ClassificationResult, error) {
	texts := make([]string, len(batch))
	for i, t := range batch {
		texts[i] = InputText(t, a.maxRunes)
	}

	preds, err := a.predictor.PredictBatch(ctx, texts)
	if err != nil {
		a.metrics.RecordClassifierCall("batch", "error")
		return nil, err
	}
	if len(preds) != len(batch) {
		a.metrics.RecordClassifierCall("batch", "invalid")
		return nil, fmt.Errorf("%w: got %d for %d inputs", entities.ErrPredictionMismatch, len(preds), len(batch))
	}

	results := make([]entities.ClassificationResult, len(preds))
	for i, p := range preds {
		res, err := toResult(p)
		if err != nil {
			a.metrics.RecordClassifierCall("batch", "invalid")
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		results[i] = res
	}
	a.metrics.RecordClassifierCall("batch", "ok")
	return results, nil
}

func (a *Adapter) classifySequential(ctx context.Context, batch []entities.Triplet) []entities.ClassificationResult {
	results := make([]entities.ClassificationResult, len(batch))
	for i, t := range batch {
		results[i] = a.ClassifyOne(ctx, t)
	}
	return results
}

func toResult(p ai.Prediction) (entities.ClassificationResult, error) {
	label := entities.Label(p.Label)
	if !label.Valid() {
		return entities.ClassificationResult{}, fmt.Errorf("%w: %d", entities.ErrLabelOutOfRange, p.Label)
	}
	if math.IsNaN(p.Confidence) {
		return entities.ClassificationResult{}, fmt.Errorf("confidence is NaN")
	}
	return entities.ClassificationResult{
		Label:      label,
		Confidence: min(max(p.Confidence, 0), 1),
	}, nil
}
