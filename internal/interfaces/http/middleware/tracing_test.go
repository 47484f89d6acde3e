package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})
	return sr
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func tracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Tracing(TracingConfig{Enabled: true, ServiceName: "lookbook-test"}),
		SpanErrorMarker(),
		ShopContext(DefaultShopConfig(defaultShop)),
		SpanAttributes(),
	)
	router.GET("/api/v1/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	router.GET("/api/v1/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	return router
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	w := serve(tracedRouter(), http.MethodGet, "/api/v1/items", map[string]string{RequestIDHeader: "req-42"})
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "req-42", attrs["request_id"].AsString())
	assert.Equal(t, defaultShop.String(), attrs[attribute.Key(telemetry.SpanAttrShopID)].AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter()

	serve(router, http.MethodGet, "/api/v1/fail", nil)
	serve(router, http.MethodGet, "/api/v1/missing", nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEqual(t, codes.Error, spans[1].Status().Code)
}
