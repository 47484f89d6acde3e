package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrIntent  = attribute.Key("intent")
	AttrOutcome = attribute.Key("outcome")
	AttrCached  = attribute.Key("cached")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
	AttrHTTPRoute      = attribute.Key("http.route")
)

// Histogram bucket bounds
var (
	// HTTPDurationBuckets are in seconds.
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// RecommendationDurationBuckets reach from cache hits to slow rationale
	// calls, in seconds.
	RecommendationDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	OutfitCountBuckets = []float64{0, 1, 2, 3, 5, 8, 10, 20}
)

// Recommendation outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// RecommendationSample is one finished recommendation request.
type RecommendationSample struct {
	Intent    string
	Outfits   int
	Fallbacks int
	Cached    bool
	Duration  time.Duration
	Failed    bool
}

// Outcome classifies the sample for the outcome label.
func (s RecommendationSample) Outcome() string {
	switch {
	case s.Failed:
		return OutcomeError
	case s.Outfits == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// RecommendationMetrics tracks the recommendation pipeline.
type RecommendationMetrics struct {
	requests  metric.Int64Counter
	fallbacks metric.Int64Counter
	latency   metric.Float64Histogram
	outfits   metric.Float64Histogram
}

// NewRecommendationMetrics registers the recommendation instruments on meter.
func NewRecommendationMetrics(meter metric.Meter) (*RecommendationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   RecommendationMetrics
		err error
	)
	if m.requests, err = counter(meter, "lookbook_recommendation_requests_total",
		"Recommendation requests by intent, outcome and cache use", "{requests}"); err != nil {
		return nil, err
	}
	if m.fallbacks, err = counter(meter, "lookbook_rationale_fallback_total",
		"Outfits whose rationale fell back to the template", "{outfits}"); err != nil {
		return nil, err
	}
	if m.latency, err = histogram(meter, "lookbook_recommendation_duration_seconds",
		"Recommendation request latency", "s", RecommendationDurationBuckets); err != nil {
		return nil, err
	}
	if m.outfits, err = histogram(meter, "lookbook_recommendation_outfits",
		"Outfits returned per recommendation", "{outfits}", OutfitCountBuckets); err != nil {
		return nil, err
	}
	return &m, nil
}

// Record records one finished request. Failed requests count toward
// requests and latency only.
func (m *RecommendationMetrics) Record(ctx context.Context, s RecommendationSample) {
	intent := AttrIntent.String(s.Intent)
	cached := AttrCached.Bool(s.Cached)

	m.requests.Add(ctx, 1, metric.WithAttributes(intent, AttrOutcome.String(s.Outcome()), cached))
	m.latency.Record(ctx, s.Duration.Seconds(), metric.WithAttributes(intent, cached))
	if s.Failed {
		return
	}
	m.outfits.Record(ctx, float64(s.Outfits), metric.WithAttributes(intent))
	if s.Fallbacks > 0 {
		m.fallbacks.Add(ctx, int64(s.Fallbacks), metric.WithAttributes(intent))
	}
}

// HTTPMetrics tracks request counts and latency per route.
type HTTPMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewHTTPMetrics registers the HTTP server instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	requests, err := counter(meter, "lookbook_http_requests_total", "HTTP requests served", "{requests}")
	if err != nil {
		return nil, err
	}
	latency, err := histogram(meter, "lookbook_http_request_duration_seconds", "HTTP request latency", "s", HTTPDurationBuckets)
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, latency: latency}, nil
}

// Record records one served request.
func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, d.Seconds(), attrs)
}
