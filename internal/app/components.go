// Package app wires configuration into the pipeline's model handles and
// audit sinks. It is shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/internal/usecase/ai"
	"github.com/johnquangdev/meeting-filter/internal/usecase/classifier"
	"github.com/johnquangdev/meeting-filter/internal/usecase/models"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/meeting-filter/pkg/ai"
	"github.com/johnquangdev/meeting-filter/pkg/config"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
)

// healthTimeout bounds each backend readiness check made while loading a model.
const healthTimeout = 10 * time.Second

// Models holds the lazily loaded backends. Handles for backends that are not
// configured are nil.
type Models struct {
	Registry    *models.Registry
	Classifier  *models.Lazy[*classifier.Adapter]
	Analyzer    *models.Lazy[pipeline.Analyzer]
	Transcriber *models.Lazy[pipeline.Transcriber]
}

// Options are the optional collaborators of NewModels.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.PipelineMetrics
	// Cache memoizes classifier predictions when set.
	Cache   classifier.ResultCache
	Prompts *config.Prompts
}

// NewModels registers every backend cfg enables. Nothing is contacted until
// a handle is first used or the registry is preloaded.
func NewModels(cfg *config.Config, opts Options) *Models {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Models{Registry: models.NewRegistry(logger)}

	if cfg.Classifier.URL != "" {
		m.Classifier = models.Register(m.Registry, models.NameClassifier, func(ctx context.Context) (*classifier.Adapter, error) {
			client := pkgai.NewClassifierClient(&cfg.Classifier)
			if err := checkReady(ctx, client.Health); err != nil {
				return nil, err
			}

			var predictor classifier.Predictor = client
			if opts.Cache != nil {
				predictor = classifier.NewCachedPredictor(client, opts.Cache, cfg.Classifier.CacheTTL, logger)
			}
			return classifier.NewAdapter(predictor,
				classifier.WithLogger(logger),
				classifier.WithMetrics(opts.Metrics),
				classifier.WithMaxInputRunes(cfg.Pipeline.MaxInputRunes),
			), nil
		})
	}

	if cfg.Groq.APIKey != "" {
		m.Analyzer = models.Register(m.Registry, models.NameGenerator, func(ctx context.Context) (pipeline.Analyzer, error) {
			client := pkgai.NewGroqClient(&cfg.Groq)
			if err := checkReady(ctx, client.Ping); err != nil {
				return nil, err
			}

			prompts := config.DefaultPrompts()
			if opts.Prompts != nil {
				prompts = *opts.Prompts
			}
			return ai.NewAnalyzer(client,
				ai.WithLogger(logger),
				ai.WithMetrics(opts.Metrics),
				ai.WithPrompts(prompts),
				ai.WithBudget(cfg.Pipeline.MaxInputTokens(), cfg.Pipeline.OverlapTokens),
				ai.WithRetry(2*time.Second, 10*time.Second, cfg.Pipeline.GenerationMaxElapsed),
			), nil
		})
	}

	if cfg.Assembly.APIKey != "" {
		m.Transcriber = models.Register(m.Registry, models.NameTranscriber, func(ctx context.Context) (pipeline.Transcriber, error) {
			t := pkgai.NewAssemblyAITranscriber(&cfg.Assembly)
			if err := checkReady(ctx, t.Ready); err != nil {
				return nil, err
			}
			return t, nil
		})
	}

	return m
}

// LoadPrompts reads the prompt overrides named in cfg, if any.
func LoadPrompts(cfg *config.Config) (*config.Prompts, error) {
	if cfg.Pipeline.PromptsFile == "" {
		return nil, nil
	}
	p, err := config.LoadPrompts(cfg.Pipeline.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	return &p, nil
}

func checkReady(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return check(ctx)
}
