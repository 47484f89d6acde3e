// Package llm generates outfit rationales with a chat model.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker around the model endpoint
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
	Interval    time.Duration
}

// ChatRationaleGenerator asks a chat model to explain outfits.
// Calls go through a circuit breaker so a failing endpoint is skipped
// quickly and the recommender falls back to the template.
type ChatRationaleGenerator struct {
	model   model.BaseChatModel
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

// NewChatRationaleGenerator wraps a chat model
func NewChatRationaleGenerator(chatModel model.BaseChatModel, settings BreakerSettings, logger *zap.Logger) *ChatRationaleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}

	g := &ChatRationaleGenerator{model: chatModel, logger: logger}
	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "rationale-llm",
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		// a shopper hanging up is not the model's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Rationale circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return g
}

// Generate returns the model's rationale for the outfit
func (g *ChatRationaleGenerator) Generate(ctx context.Context, req styling.RationaleRequest) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		msg, err := g.model.Generate(ctx, buildMessages(req))
		if err != nil {
			return "", err
		}
		if msg == nil {
			return "", styling.ErrEmptyRationale
		}
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			return "", styling.ErrEmptyRationale
		}
		return text, nil
	})
}

// State reports the breaker state for health output
func (g *ChatRationaleGenerator) State() string {
	return g.breaker.State().String()
}

// Ensure ChatRationaleGenerator implements RationaleGenerator
var _ styling.RationaleGenerator = (*ChatRationaleGenerator)(nil)
