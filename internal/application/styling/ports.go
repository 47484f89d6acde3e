package styling

import (
	"context"
	"time"
)

// RecommendationCache stores encoded recommendation responses.
// It is implemented by the infrastructure layer (Redis or in-memory).
type RecommendationCache interface {
	// Get returns the cached payload and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload for the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteByPrefix removes every entry whose key starts with prefix
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// RecommendationOutcome summarizes one recommendation request for metrics
type RecommendationOutcome struct {
	Intent    string
	Outfits   int
	Fallbacks int
	Cached    bool
	Duration  time.Duration
	Err       error
}

// RecommendationMetrics records recommendation pipeline metrics
type RecommendationMetrics interface {
	RecordRecommendation(ctx context.Context, outcome RecommendationOutcome)
}

type noopMetrics struct{}

func (noopMetrics) RecordRecommendation(context.Context, RecommendationOutcome) {}
