package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that hit no registered route
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count and latency per method, route pattern and status.
// A nil metrics set yields a pass-through middleware.
func HTTPMetrics(metrics *telemetry.HTTPMetrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		metrics.Record(
			c.Request.Context(),
			c.Request.Method,
			routePattern(c),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// routePattern keeps label cardinality bounded by using gin's matched pattern
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
