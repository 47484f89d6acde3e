package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/infrastructure/logger"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"github.com/lookbook/backend/internal/interfaces/http/handler"
	"github.com/lookbook/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig carries the HTTP settings the engine needs
type EngineConfig struct {
	DefaultShopID  uuid.UUID
	MaxBodySize    int64
	CORSOrigins    []string
	TrustedProxies []string
	Tracing        bool
	ServiceName    string
	RateLimit      int
	RateWindow     time.Duration
	// HTTPMetrics is nil when metrics are disabled
	HTTPMetrics *telemetry.HTTPMetrics
}

// Handlers bundles the API handlers
type Handlers struct {
	System          *handler.SystemHandler
	Items           *handler.ItemHandler
	Rules           *handler.RuleHandler
	Recommendations *handler.RecommendationHandler
}

// Engine is the assembled gin engine plus resources that need stopping
type Engine struct {
	*gin.Engine
	limiter *middleware.RateLimiter
}

// Close stops background middleware resources
func (e *Engine) Close() {
	if e.limiter != nil {
		e.limiter.Stop()
	}
}

// NewEngine builds the gin engine with the middleware chain and all routes
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) (*Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{Enabled: cfg.Tracing, ServiceName: cfg.ServiceName}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.HTTPMetrics),
		middleware.ShopContext(middleware.DefaultShopConfig(cfg.DefaultShopID)),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	out := &Engine{Engine: engine}
	if cfg.RateLimit > 0 {
		out.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		engine.Use(middleware.RateLimit(out.limiter))
	}

	engine.GET("/health", h.System.Health)

	Mount(engine, APIVersion,
		SystemRoutes(h.System),
		CatalogRoutes(h.Items),
		StylingRoutes(h.Rules, h.Recommendations),
	)
	return out, nil
}

// SystemRoutes returns the /system group
func SystemRoutes(h *handler.SystemHandler) *RouteGroup {
	return NewRouteGroup("/system").
		GET("/ping", h.Ping)
}

// CatalogRoutes returns the /catalog group
func CatalogRoutes(h *handler.ItemHandler) *RouteGroup {
	catalog := NewRouteGroup("/catalog")
	catalog.Sub("/items").
		POST("", h.Create).
		GET("", h.List).
		POST("/import", h.Import).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		PATCH("/:id/stock", h.UpdateStock).
		DELETE("/:id", h.Delete).
		POST("/:id/image-upload-url", h.CreateImageUploadURL)
	return catalog
}

// StylingRoutes returns the /styling group
func StylingRoutes(rules *handler.RuleHandler, recs *handler.RecommendationHandler) *RouteGroup {
	styling := NewRouteGroup("/styling")
	styling.Sub("/rules").
		POST("", rules.Create).
		GET("", rules.List).
		GET("/:id", rules.GetByID).
		PUT("/:id", rules.Update).
		POST("/:id/activate", rules.Activate).
		POST("/:id/deactivate", rules.Deactivate).
		DELETE("/:id", rules.Delete)
	styling.
		POST("/recommendations", recs.Recommend).
		POST("/intents/parse", recs.ParseIntent).
		GET("/outfits", recs.ListOutfits).
		GET("/outfits/:id", recs.GetOutfit)
	return styling
}
