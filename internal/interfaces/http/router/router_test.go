package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/interfaces/http/handler"
	"github.com/lookbook/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMount(t *testing.T) {
	engine := gin.New()
	Mount(engine, "v2", NewRouteGroup("/test").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }))

	w := serve(engine, http.MethodGet, "/api/v2/test/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/test/ping", nil).Code)
}

func TestRouteGroup(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	var called bool
	group := NewRouteGroup("/catalog").Use(func(c *gin.Context) {
		called = true
		c.Next()
	})
	group.Sub("/items").
		GET("", ok).
		PATCH("/:id/stock", ok)

	assert.Equal(t, []string{"GET /catalog/items", "PATCH /catalog/items/:id/stock"}, group.Routes())

	engine := gin.New()
	Mount(engine, APIVersion, group)

	w := serve(engine, http.MethodPatch, "/api/v1/catalog/items/1/stock", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called, "group middleware wraps nested routes")
}

func TestRouteTables(t *testing.T) {
	items := handler.NewItemHandler(nil, 0)
	rules := handler.NewRuleHandler(nil)
	recs := handler.NewRecommendationHandler(nil, nil)

	assert.ElementsMatch(t, []string{
		"POST /catalog/items",
		"GET /catalog/items",
		"POST /catalog/items/import",
		"GET /catalog/items/:id",
		"PUT /catalog/items/:id",
		"PATCH /catalog/items/:id/stock",
		"DELETE /catalog/items/:id",
		"POST /catalog/items/:id/image-upload-url",
	}, CatalogRoutes(items).Routes())

	assert.ElementsMatch(t, []string{
		"POST /styling/recommendations",
		"POST /styling/intents/parse",
		"GET /styling/outfits",
		"GET /styling/outfits/:id",
		"POST /styling/rules",
		"GET /styling/rules",
		"GET /styling/rules/:id",
		"PUT /styling/rules/:id",
		"POST /styling/rules/:id/activate",
		"POST /styling/rules/:id/deactivate",
		"DELETE /styling/rules/:id",
	}, StylingRoutes(rules, recs).Routes())
}

func newTestEngine(t *testing.T, cfg EngineConfig) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, Handlers{
		System:          handler.NewSystemHandler(),
		Items:           handler.NewItemHandler(nil, 0),
		Rules:           handler.NewRuleHandler(nil),
		Recommendations: handler.NewRecommendationHandler(nil, nil),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, EngineConfig{
		DefaultShopID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		MaxBodySize:   1 << 20,
	})

	t.Run("health", func(t *testing.T) {
		w := serve(e, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("ping ignores the shop header", func(t *testing.T) {
		w := serve(e, http.MethodGet, "/api/v1/system/ping", map[string]string{middleware.TenantHeader: "junk"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad shop header", func(t *testing.T) {
		w := serve(e, http.MethodGet, "/api/v1/catalog/items/"+uuid.NewString(), map[string]string{middleware.TenantHeader: "junk"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed id is rejected before the service", func(t *testing.T) {
		w := serve(e, http.MethodGet, "/api/v1/styling/outfits/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := serve(e, http.MethodGet, "/api/v1/nowhere", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewEngine_RateLimit(t *testing.T) {
	e := newTestEngine(t, EngineConfig{
		DefaultShopID: uuid.New(),
		RateLimit:     1,
		RateWindow:    time.Minute,
	})

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/health", nil).Code)
}
