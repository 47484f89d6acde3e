package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"github.com/lookbook/backend/internal/interfaces/http/dto"
)

// Pinger is a dependency the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthComponent is one probed dependency.
// Critical components turn the service unhealthy when down; others only degrade it.
type HealthComponent struct {
	Name     string
	Pinger   Pinger
	Critical bool
}

// Health statuses
const (
	HealthOK        = "ok"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

const healthProbeTimeout = 2 * time.Second

// SystemHandler handles health and system endpoints
type SystemHandler struct {
	BaseHandler
	startTime    time.Time
	components   []HealthComponent
	breakerState func() string
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithHealthComponent adds a probed dependency
func WithHealthComponent(name string, p Pinger, critical bool) SystemOption {
	return func(h *SystemHandler) {
		if p != nil {
			h.components = append(h.components, HealthComponent{Name: name, Pinger: p, Critical: critical})
		}
	}
}

// WithBreakerState reports the rationale circuit breaker state
func WithBreakerState(state func() string) SystemOption {
	return func(h *SystemHandler) {
		h.breakerState = state
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{startTime: time.Now()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	GoVersion    string            `json:"go_version"`
	Uptime       string            `json:"uptime"`
	Components   map[string]string `json:"components,omitempty"`
	RationaleLLM string            `json:"rationale_llm,omitempty"`
}

// Health handles GET /health. It answers 503 only when a critical component is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    HealthOK,
		Version:   telemetry.ServiceVersion,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if len(h.components) > 0 {
		resp.Components = make(map[string]string, len(h.components))
	}

	// Stable probe order
	components := append([]HealthComponent(nil), h.components...)
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	for _, comp := range components {
		if err := comp.Pinger.Ping(ctx); err != nil {
			resp.Components[comp.Name] = "down: " + err.Error()
			if comp.Critical {
				resp.Status = HealthUnhealthy
			} else if resp.Status == HealthOK {
				resp.Status = HealthDegraded
			}
			continue
		}
		resp.Components[comp.Name] = HealthOK
	}
	if h.breakerState != nil {
		resp.RationaleLLM = h.breakerState()
	}

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id,omitempty"`
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   telemetry.GetTraceID(c.Request.Context()),
	})
}
