package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/lookbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRationaleGenerator builds the configured rationale generator.
// The template provider never calls out and never fails.
func NewRationaleGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (styling.RationaleGenerator, error) {
	switch cfg.Provider {
	case "", config.LLMProviderTemplate:
		return styling.TemplateRationale{}, nil
	case config.LLMProviderArk:
		arkCfg := &ark.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}
		if cfg.Timeout > 0 {
			timeout := cfg.Timeout
			arkCfg.Timeout = &timeout
		}
		chatModel, err := ark.NewChatModel(ctx, arkCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		return NewChatRationaleGenerator(chatModel, BreakerSettings{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
			Interval:    cfg.BreakerInterval,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
