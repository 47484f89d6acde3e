package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "lookbook-backend"

// Span attribute keys for recommendation spans
const (
	SpanAttrShopID     = "shop_id"
	SpanAttrIntent     = "intent"
	SpanAttrMaxOutfits = "max_outfits"
	SpanAttrOutfits    = "outfits"
	SpanAttrCandidates = "candidates"
	SpanAttrCached     = "cached"
	SpanAttrFallbacks  = "rationale_fallbacks"
	SpanAttrRuleID     = "rule_id"
	SpanAttrItemSKU    = "item_sku"
)

// SpanOption adjusts a span before it starts
type SpanOption func(*spanStart)

type spanStart struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute sets one attribute at span start
func WithAttribute(key string, value any) SpanOption {
	return func(s *spanStart) { s.attrs = append(s.attrs, attributeOf(key, value)) }
}

// WithSpanKind overrides the default internal kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(s *spanStart) { s.kind = kind }
}

// StartSpan starts a span on the global provider's application tracer.
// End the returned span:
//
//	ctx, span := telemetry.StartSpan(ctx, "outfits.generate")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	start := spanStart{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&start)
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(start.kind),
		trace.WithAttributes(start.attrs...),
	)
}

// StartServiceSpan names the span service.method, e.g. "recommendation.recommend".
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes sets key/value pairs on span. Non-string keys and an
// unpaired trailing key are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span != nil {
		span.SetAttributes(attributesOf(keyValues)...)
	}
}

// AddEvent adds a named event carrying key/value pairs.
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attributesOf(keyValues)...))
	}
}

// RecordError records err and sets the span status to error. A nil err
// leaves the span untouched.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SpanFromContext returns the span in ctx, or a non-recording span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// GetTraceID returns the hex trace id in ctx, or "".
func GetTraceID(ctx context.Context) string {
	id := trace.SpanContextFromContext(ctx).TraceID()
	if id.IsValid() {
		return id.String()
	}
	return ""
}

func attributesOf(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 1; i < len(keyValues); i += 2 {
		if key, ok := keyValues[i-1].(string); ok {
			attrs = append(attrs, attributeOf(key, keyValues[i]))
		}
	}
	return attrs
}

func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(value))
}
