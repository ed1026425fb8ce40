package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the transcript pipeline.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	// Stage metrics
	StageSeconds *prometheus.HistogramVec

	// Filtering metrics
	UtterancesTotal *prometheus.CounterVec
	NoiseRatio      prometheus.Histogram

	// Classifier metrics
	ClassifierCallsTotal     *prometheus.CounterVec
	ClassifierFallbacksTotal prometheus.Counter

	// Generation metrics
	ChunksTotal            *prometheus.CounterVec
	GenerationAttemptTotal *prometheus.CounterVec

	// Audit metrics
	AuditWritesTotal *prometheus.CounterVec
}

// DefaultPipelineMetrics registers metrics with the default registry.
func DefaultPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetrics(prometheus.DefaultRegisterer)
}

// NewPipelineMetrics creates a new set of pipeline metrics.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noisefilter_stage_seconds",
				Help:    "Latency per pipeline stage",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"stage"},
		),

		UtterancesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisefilter_utterances_total",
				Help: "Utterances seen by the filter, by outcome",
			},
			[]string{"outcome"},
		),
		NoiseRatio: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "noisefilter_noise_ratio",
				Help:    "Fraction of utterances discarded per run",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),

		ClassifierCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisefilter_classifier_calls_total",
				Help: "Classifier invocations by mode and status",
			},
			[]string{"mode", "status"},
		),
		ClassifierFallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "noisefilter_classifier_batch_fallbacks_total",
				Help: "Batches that fell back to per-item classification",
			},
		),

		ChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisefilter_chunks_total",
				Help: "Chunks sent to generation, by status",
			},
			[]string{"status"},
		),
		GenerationAttemptTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisefilter_generation_attempts_total",
				Help: "Generation attempts including retries",
			},
			[]string{"status"},
		),

		AuditWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisefilter_audit_writes_total",
				Help: "Audit sink writes by sink and status",
			},
			[]string{"sink", "status"},
		),
	}
}

// ObserveStage records how long a stage took.
func (m *PipelineMetrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordFilterOutcome records one run's kept and discarded counts.
func (m *PipelineMetrics) RecordFilterOutcome(kept, discarded int, noiseRatio float64) {
	if m == nil {
		return
	}
	m.UtterancesTotal.WithLabelValues("kept").Add(float64(kept))
	m.UtterancesTotal.WithLabelValues("discarded").Add(float64(discarded))
	m.NoiseRatio.Observe(noiseRatio)
}

// RecordClassifierCall records a classifier invocation.
func (m *PipelineMetrics) RecordClassifierCall(mode, status string) {
	if m == nil {
		return
	}
	m.ClassifierCallsTotal.WithLabelValues(mode, status).Inc()
}

// RecordBatchFallback records a batch that was retried item by item.
func (m *PipelineMetrics) RecordBatchFallback() {
	if m == nil {
		return
	}
	m.ClassifierFallbacksTotal.Inc()
}

// RecordChunk records the final status of one chunk.
func (m *PipelineMetrics) RecordChunk(status string) {
	if m == nil {
		return
	}
	m.ChunksTotal.WithLabelValues(status).Inc()
}

// RecordGenerationAttempt records one call to the generator.
func (m *PipelineMetrics) RecordGenerationAttempt(status string) {
	if m == nil {
		return
	}
	m.GenerationAttemptTotal.WithLabelValues(status).Inc()
}

// RecordAuditWrite records one audit sink write.
func (m *PipelineMetrics) RecordAuditWrite(sink, status string) {
	if m == nil {
		return
	}
	m.AuditWritesTotal.WithLabelValues(sink, status).Inc()
}
