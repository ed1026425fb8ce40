package app

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-filter/internal/usecase/filter"
	"github.com/johnquangdev/meeting-filter/pkg/config"
)

// noiseListTTL is how long per-run noise lists are kept in Redis.
const noiseListTTL = 7 * 24 * time.Hour

// Backends are the optional stores an audit sink can write to.
type Backends struct {
	Noise   repositories.NoiseRecordRepository
	Redis   redis.Cmdable
	Objects filter.ObjectUploader
}

// NewAuditSink builds the sink selected by cfg.Audit. Destinations whose
// backend is unavailable are skipped. It returns nil when nothing is selected.
func NewAuditSink(cfg config.AuditConfig, b Backends) filter.AuditSink {
	var sinks filter.MultiSink
	if cfg.FilePath != "" {
		sinks = append(sinks, filter.NewFileSink(cfg.FilePath))
	}
	if cfg.ToDatabase && b.Noise != nil {
		sinks = append(sinks, filter.NewRepositorySink(b.Noise))
	}
	if cfg.ToRedis && b.Redis != nil {
		sinks = append(sinks, filter.NewRedisSink(b.Redis, noiseListTTL))
	}
	if cfg.ToStorage && b.Objects != nil {
		sinks = append(sinks, filter.NewObjectSink(b.Objects))
	}

	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	}
	return sinks
}
