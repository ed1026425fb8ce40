// Package ai turns transcript text into structured meeting analysis with a
// text generation model, chunking input that exceeds the model's context.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/usecase/chunking"
	"github.com/johnquangdev/meeting-filter/pkg/config"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
)

// Generator produces a raw model response for a prompt pair.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt, schemaHint string) (string, error)
}

// Defaults match the pipeline config defaults.
const (
	DefaultMaxInputTokens = 32768 - 4000
	DefaultOverlapTokens  = 200
	DefaultMaxElapsed     = 60 * time.Second
)

// Analyzer runs meeting analysis, directly or chunk by chunk.
type Analyzer struct {
	gen             Generator
	prompts         config.Prompts
	merger          *chunking.Merger
	maxInputTokens  int
	overlapTokens   int
	maxElapsed      time.Duration
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
	metrics         *metrics.PipelineMetrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

func WithPrompts(p config.Prompts) Option {
	return func(a *Analyzer) { a.prompts = p }
}

// WithMerger replaces the default space-concatenating merger.
func WithMerger(m *chunking.Merger) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.merger = m
		}
	}
}

// WithBudget sets the per-request input budget and the chunk overlap, both
// in estimated tokens.
func WithBudget(maxInputTokens, overlapTokens int) Option {
	return func(a *Analyzer) {
		a.maxInputTokens = maxInputTokens
		a.overlapTokens = overlapTokens
	}
}

// WithRetry bounds the per-chunk generation retries.
func WithRetry(initial, maxInterval, maxElapsed time.Duration) Option {
	return func(a *Analyzer) {
		a.initialInterval = initial
		a.maxInterval = maxInterval
		a.maxElapsed = maxElapsed
	}
}

// NewAnalyzer creates an analyzer over gen.
func NewAnalyzer(gen Generator, opts ...Option) *Analyzer {
	a := &Analyzer{
		gen:             gen,
		prompts:         config.DefaultPrompts(),
		merger:          chunking.NewMerger(nil),
		maxInputTokens:  DefaultMaxInputTokens,
		overlapTokens:   DefaultOverlapTokens,
		maxElapsed:      DefaultMaxElapsed,
		initialInterval: 2 * time.Second,
		maxInterval:     10 * time.Second,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts summary, action items and decisions from text. Input that
// fits the budget is sent in one request; longer input is chunked and the
// per-chunk results merged. Generation and parse failures come back as
// failure payloads; only empty input and an invalid budget return an error.
func (a *Analyzer) Analyze(ctx context.Context, text string) (entities.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return entities.AnalysisResult{}, entities.ErrEmptyText
	}
	start := time.Now()
	originalTokens := chunking.EstimateTokens(text)

	userPrompt := fmt.Sprintf(a.prompts.User, text)
	if chunking.EstimateTokens(a.prompts.System+"\n"+userPrompt) <= a.maxInputTokens {
		result := a.generate(ctx, a.prompts.System, userPrompt)
		a.metrics.RecordChunk(chunkStatus(result))
		result.Metadata = &entities.AnalysisMetadata{
			TotalChunks:      1,
			OriginalTokens:   originalTokens,
			ProcessingMethod: entities.ProcessingMethodDirect,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}
		return result, nil
	}

	budget := a.chunkBudget()
	chunks, err := chunking.Split(text, budget, a.overlapTokens)
	if err != nil {
		return entities.AnalysisResult{}, fmt.Errorf("split transcript: %w", err)
	}

	a.logger.Info("analyzing transcript in chunks",
		zap.Int("original_tokens", originalTokens),
		zap.Int("chunk_budget", budget),
		zap.Int("chunks", len(chunks)),
	)

	results := make([]entities.AnalysisResult, len(chunks))
	for i, chunk := range chunks {
		system := a.prompts.System + fmt.Sprintf(a.prompts.ChunkAddendum, i+1, len(chunks))
		results[i] = a.generate(ctx, system, fmt.Sprintf(a.prompts.User, chunk.Text))
		a.metrics.RecordChunk(chunkStatus(results[i]))
		if results[i].Failed() {
			a.logger.Warn("chunk analysis failed",
				zap.Int("chunk_id", chunk.ID),
				zap.String("error", results[i].Error),
			)
		}
	}

	merged := a.merger.Merge(results, chunks)
	if merged.Metadata == nil {
		// A single chunk is returned by the merger as is.
		merged.Metadata = &entities.AnalysisMetadata{
			ChunkingApplied:  true,
			TotalChunks:      len(chunks),
			ProcessingMethod: entities.ProcessingMethodChunked,
		}
		for _, c := range chunks {
			merged.Metadata.ChunkTokens = append(merged.Metadata.ChunkTokens, c.EstimatedTokens)
			merged.Metadata.ChunksInfo = append(merged.Metadata.ChunksInfo, c.Info())
		}
	}
	merged.Metadata.OriginalTokens = originalTokens
	merged.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()

	a.logger.Info("chunked analysis merged",
		zap.Int("chunks", len(chunks)),
		zap.Int("failed_chunks", len(merged.Metadata.FailedChunks)),
		zap.Int("action_items", len(merged.ActionItems)),
	)
	return merged, nil
}

// chunkBudget is the token budget left for transcript text once the prompt
// scaffolding of a chunk request is accounted for.
func (a *Analyzer) chunkBudget() int {
	scaffold := a.prompts.System + fmt.Sprintf(a.prompts.ChunkAddendum, 999, 999) + "\n" + fmt.Sprintf(a.prompts.User, "")
	return max(1, a.maxInputTokens-chunking.EstimateTokens(scaffold))
}

// generate calls the model with retries and parses the response. Errors are
// reported as failure payloads.
func (a *Analyzer) generate(ctx context.Context, systemPrompt, userPrompt string) entities.AnalysisResult {
	var raw string
	attempt := func() error {
		out, err := a.gen.Generate(ctx, systemPrompt, userPrompt, a.prompts.SchemaHint)
		if err != nil {
			a.metrics.RecordGenerationAttempt("error")
			if !jobcontext.IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			a.logger.Warn("generation failed, retrying", zap.Error(err))
			return err
		}
		a.metrics.RecordGenerationAttempt("success")
		raw = out
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.initialInterval
	bo.MaxInterval = a.maxInterval
	bo.MaxElapsedTime = a.maxElapsed

	if err := backoff.Retry(attempt, backoff.WithContext(bo, ctx)); err != nil {
		return entities.NewFailedAnalysis(fmt.Sprintf("generation failed: %v", err), "")
	}
	return ParseAnalysis(raw)
}

func chunkStatus(r entities.AnalysisResult) string {
	if r.Failed() {
		return "failed"
	}
	return "ok"
}
