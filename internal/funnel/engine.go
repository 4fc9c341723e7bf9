package funnel

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cradoe/kycflow/internal/repository"
)

const (
	metricsCacheKey = "funnel:metrics"
	metricsCacheTTL = 30 * time.Second
)

// MetricsCache is the slice of the cache the engine needs. A nil cache
// disables caching; every snapshot is then computed from the store.
type MetricsCache interface {
	Get(key string) (string, error)
	Set(key string, value string, expiration time.Duration) error
}

// Engine reads a snapshot of all persisted stage records and computes the
// funnel counts. Computation is read-only and tolerates records committed
// while it runs; a record either makes this snapshot or the next one.
type Engine struct {
	verifications repository.PanVerificationRepository
	pennyDrops    repository.PennyDropRepository
	cache         MetricsCache
	logger        *slog.Logger
}

func NewEngine(verifications repository.PanVerificationRepository, pennyDrops repository.PennyDropRepository, cache MetricsCache, logger *slog.Logger) *Engine {
	return &Engine{
		verifications: verifications,
		pennyDrops:    pennyDrops,
		cache:         cache,
		logger:        logger,
	}
}

func (e *Engine) Snapshot() (*Metrics, error) {
	if e.cache != nil {
		cached, err := e.cache.Get(metricsCacheKey)
		if err == nil && cached != "" {
			var metrics Metrics
			if err := json.Unmarshal([]byte(cached), &metrics); err == nil {
				return &metrics, nil
			}
		}
	}

	verifications, err := e.verifications.GetAll()
	if err != nil {
		return nil, err
	}

	challenges, err := e.pennyDrops.GetAll()
	if err != nil {
		return nil, err
	}

	metrics := Compute(verifications, challenges)

	if e.cache != nil {
		js, err := json.Marshal(metrics)
		if err == nil {
			if err := e.cache.Set(metricsCacheKey, string(js), metricsCacheTTL); err != nil {
				e.logger.Warn("failed to cache funnel metrics", "error", err)
			}
		}
	}

	return metrics, nil
}
