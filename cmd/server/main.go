package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	stylingapp "github.com/lookbook/backend/internal/application/styling"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/lookbook/backend/internal/infrastructure/cache"
	"github.com/lookbook/backend/internal/infrastructure/config"
	"github.com/lookbook/backend/internal/infrastructure/llm"
	"github.com/lookbook/backend/internal/infrastructure/logger"
	"github.com/lookbook/backend/internal/infrastructure/persistence"
	"github.com/lookbook/backend/internal/infrastructure/storage"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"github.com/lookbook/backend/internal/interfaces/http/handler"
	"github.com/lookbook/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	collector := telemetry.Collector{
		Endpoint:    cfg.Telemetry.CollectorEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	log = logProvider.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting lookbook backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	meter := meterProvider.Meter(telemetry.TracerName)
	recMetrics, err := telemetry.NewRecommendationMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create recommendation metrics", zap.Error(err))
	}
	var httpMetrics *telemetry.HTTPMetrics
	if meterProvider.IsEnabled() {
		if httpMetrics, err = telemetry.NewHTTPMetrics(meter); err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	itemRepo := persistence.NewGormItemRepository(db.DB)
	ruleRepo := persistence.NewGormRuleRepository(db.DB)
	outfitRepo := persistence.NewGormOutfitRepository(db.DB)

	// Response cache
	recCache, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize recommendation cache", zap.Error(err))
	}

	// Item image storage
	var objectStorage catalogapp.ObjectStorageService
	var storagePing handler.Pinger
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		if cfg.Storage.Endpoint != "" {
			if err := s3Storage.EnsureBucket(ctx); err != nil {
				log.Warn("Image bucket is not ready", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
			}
		}
		objectStorage = s3Storage
		storagePing = handler.PingFunc(s3Storage.EnsureBucket)
	} else {
		log.Info("Image storage disabled, items are served without image URLs")
	}

	// Rationale generator
	rationale, err := llm.NewRationaleGenerator(ctx, cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to initialize rationale generator", zap.Error(err))
	}

	// Domain
	rulesEngine := styling.NewRulesEngine(ruleRepo, log)
	recommender := styling.NewOutfitRecommender(rulesEngine, rationale, styling.RecommenderConfig{
		RationaleTimeout:  cfg.Recommendation.RationaleTimeout,
		MaxPriceDeviation: cfg.Recommendation.MaxPriceDeviation,
		RationaleWorkers:  cfg.Recommendation.RationaleWorkers,
	}, log)

	// Application services
	itemCfg := catalogapp.DefaultItemServiceConfig()
	if cfg.Storage.UploadURLExpiry > 0 {
		itemCfg.UploadURLExpiry = cfg.Storage.UploadURLExpiry
	}
	if cfg.Storage.DownloadURLExpiry > 0 {
		itemCfg.DownloadURLExpiry = cfg.Storage.DownloadURLExpiry
	}
	images := catalogapp.NewImageURLResolver(objectStorage, itemCfg.DownloadURLExpiry)

	itemService := catalogapp.NewItemService(itemRepo, objectStorage, itemCfg, log)
	ruleService := stylingapp.NewRuleService(ruleRepo, recCache, log)
	recommendationService := stylingapp.NewRecommendationService(
		recommender,
		itemRepo,
		outfitRepo,
		stylingapp.RecommendationConfig{
			DefaultMaxOutfits: cfg.Recommendation.DefaultMaxOutfits,
			MaxOutfitsLimit:   cfg.Recommendation.MaxOutfitsLimit,
			CandidateLimit:    cfg.Recommendation.CandidateLimit,
			CacheTTL:          cfg.Recommendation.CacheTTL,
			DefaultIntent:     cfg.Recommendation.DefaultIntent,
		},
		log,
		stylingapp.WithCache(recCache),
		stylingapp.WithMetrics(recommendationMetrics{recMetrics}),
		stylingapp.WithImageResolver(images),
	)
	outfitService := stylingapp.NewOutfitQueryService(outfitRepo, images)

	// HTTP
	systemOpts := []handler.SystemOption{
		handler.WithHealthComponent("database", db, true),
		handler.WithHealthComponent("cache", recCache, false),
	}
	if storagePing != nil {
		systemOpts = append(systemOpts, handler.WithHealthComponent("storage", storagePing, false))
	}
	if breaker, ok := rationale.(interface{ State() string }); ok {
		systemOpts = append(systemOpts, handler.WithBreakerState(breaker.State))
	}

	defaultShop, err := uuid.Parse(cfg.App.DefaultShopID)
	if err != nil {
		log.Fatal("Invalid default shop id", zap.String("default_shop_id", cfg.App.DefaultShopID), zap.Error(err))
	}

	rateLimit := 0
	if cfg.HTTP.RateLimitEnabled {
		rateLimit = cfg.HTTP.RateLimitRequests
	}

	engine, err := router.NewEngine(router.EngineConfig{
		DefaultShopID:  defaultShop,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        tracerProvider.IsEnabled(),
		ServiceName:    cfg.Telemetry.ServiceName,
		RateLimit:      rateLimit,
		RateWindow:     cfg.HTTP.RateLimitWindow,
		HTTPMetrics:    httpMetrics,
	}, router.Handlers{
		System:          handler.NewSystemHandler(systemOpts...),
		Items:           handler.NewItemHandler(itemService, cfg.HTTP.MaxImportSize),
		Rules:           handler.NewRuleHandler(ruleService),
		Recommendations: handler.NewRecommendationHandler(recommendationService, outfitService),
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	engine.Close()

	if err := recCache.Close(); err != nil {
		log.Error("Error closing recommendation cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logs provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// recommendationMetrics adapts the telemetry instruments to the styling service port
type recommendationMetrics struct {
	m *telemetry.RecommendationMetrics
}

func (r recommendationMetrics) RecordRecommendation(ctx context.Context, o stylingapp.RecommendationOutcome) {
	r.m.Record(ctx, telemetry.RecommendationSample{
		Intent:    o.Intent,
		Outfits:   o.Outfits,
		Fallbacks: o.Fallbacks,
		Cached:    o.Cached,
		Duration:  o.Duration,
		Failed:    o.Err != nil,
	})
}
