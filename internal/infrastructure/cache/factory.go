package cache

import (
	"context"
	"fmt"
	"time"

	stylingapp "github.com/lookbook/backend/internal/application/styling"
	"github.com/lookbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Cache is a recommendation cache the process owns and must close
type Cache interface {
	stylingapp.RecommendationCache
	Ping(ctx context.Context) error
	Close() error
}

// Factory creates recommendation caches based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	sweepInterval         time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		sweepInterval:         time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable,
// otherwise the in-memory cache if fallback is allowed
func (f *Factory) Create(ctx context.Context) (Cache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory recommendation cache")
		return NewInMemoryRecommendationCache(f.sweepInterval), nil
	}

	redisCache, err := NewRedisRecommendationCache(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis recommendation cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for recommendation cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory recommendation cache. "+
		"Rule changes on one instance will not invalidate other instances.",
		zap.Error(err),
	)
	return NewInMemoryRecommendationCache(f.sweepInterval), nil
}
