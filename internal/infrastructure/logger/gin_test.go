package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Set(GinTenantIDKey, "shop-1")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))

	var fromCtx string
	router.GET("/items/:id", func(c *gin.Context) {
		fromCtx = ShopID(c.Request.Context())
		L(c.Request.Context()).Info("handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42?x=1", nil))

	assert.Equal(t, "shop-1", fromCtx)
	entries := recorded.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "handler", entries[0].Message)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])

	access := entries[1]
	assert.Equal(t, "HTTP Request", access.Message)
	assert.Equal(t, zapcore.WarnLevel, access.Level)
	fields := access.ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/items/:id", fields["route"])
	assert.Equal(t, "x=1", fields["query"])
	assert.Equal(t, "shop-1", fields["shop_id"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	l := zap.NewExample()
	c.Set(ginLoggerKey, l)
	assert.Same(t, l, GetGinLogger(c))
}
