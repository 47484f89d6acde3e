package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupHTTPMetrics(t *testing.T) (*telemetry.HTTPMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.NewHTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

// requestCounts sums the request counter by route label
func requestCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "lookbook_http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
				out[route.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestHTTPMetrics(t *testing.T) {
	metrics, reader := setupHTTPMetrics(t)

	router := gin.New()
	router.Use(HTTPMetrics(metrics))
	router.GET("/api/v1/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/api/v1/items/1", nil)
	serve(router, http.MethodGet, "/api/v1/items/2", nil)
	serve(router, http.MethodGet, "/nope", nil)

	counts := requestCounts(t, reader)
	assert.Equal(t, int64(2), counts["/api/v1/items/:id"])
	assert.Equal(t, int64(1), counts[unmatchedRoute])
}

func TestHTTPMetrics_Nil(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", nil).Code)
}
