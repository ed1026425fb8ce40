package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/johnquangdev/meeting-filter/pkg/ai"
	"go.uber.org/zap"
)

// ResultCache stores serialized predictions by key.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// CachedPredictor memoizes predictions per input text. Cache errors are
// logged and treated as misses.
type CachedPredictor struct {
	next   Predictor
	cache  ResultCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedPredictor(next Predictor, cache ResultCache, ttl time.Duration, logger *zap.Logger) *CachedPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPredictor{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey is the cache key for one model input.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "clf:" + hex.EncodeToString(sum[:])
}

func (c *CachedPredictor) Predict(ctx context.Context, text string) (ai.Prediction, error) {
	if p, ok := c.lookup(ctx, text); ok {
		return p, nil
	}
	p, err := c.next.Predict(ctx, text)
	if err != nil {
		return ai.Prediction{}, err
	}
	c.store(ctx, text, p)
	return p, nil
}

// PredictBatch sends only cache misses to the wrapped predictor.
func (c *CachedPredictor) PredictBatch(ctx context.Context, texts []string) ([]ai.Prediction, error) {
	out := make([]ai.Prediction, len(texts))
	var (
		missIdx   []int
		missTexts []string
	)
	for i, text := range texts {
		if p, ok := c.lookup(ctx, text); ok {
			out[i] = p
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	preds, err := c.next.PredictBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(missTexts) {
		return nil, fmt.Errorf("predictor returned %d predictions for %d texts", len(preds), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = preds[j]
		c.store(ctx, texts[i], preds[j])
	}
	return out, nil
}

func (c *CachedPredictor) lookup(ctx context.Context, text string) (ai.Prediction, bool) {
	raw, ok, err := c.cache.Get(ctx, CacheKey(text))
	if err != nil {
		c.logger.Warn("classifier cache read failed", zap.Error(err))
		return ai.Prediction{}, false
	}
	if !ok {
		return ai.Prediction{}, false
	}
	var p ai.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ai.Prediction{}, false
	}
	return p, true
}

// store skips predictions the adapter would reject.
func (c *CachedPredictor) store(ctx context.Context, text string, p ai.Prediction) {
	if _, err := toResult(p); err != nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, CacheKey(text), string(b), c.ttl); err != nil {
		c.logger.Warn("classifier cache write failed", zap.Error(err))
	}
}
