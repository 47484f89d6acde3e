package styling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/lookbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OutfitGenerator produces outfit recommendations from a candidate pool
type OutfitGenerator interface {
	GenerateRecommendations(ctx context.Context, tenantID uuid.UUID, intent styling.Intent, candidates []catalog.Item, maxOutfits int) ([]styling.Outfit, error)
}

// RecommendationConfig holds configuration for the recommendation service
type RecommendationConfig struct {
	// DefaultMaxOutfits is used when a request omits max_outfits
	DefaultMaxOutfits int
	// MaxOutfitsLimit caps max_outfits
	MaxOutfitsLimit int
	// CandidateLimit caps the in-stock items loaded per request
	CandidateLimit int
	// CacheTTL is how long responses stay cached; zero disables caching
	CacheTTL time.Duration
	// DefaultIntent is the label used when neither the query nor the fields name one
	DefaultIntent string
}

// DefaultRecommendationConfig returns the default configuration
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		DefaultMaxOutfits: 3,
		MaxOutfitsLimit:   10,
		CandidateLimit:    500,
		CacheTTL:          5 * time.Minute,
		DefaultIntent:     styling.DefaultIntentLabel,
	}
}

// RecommendationService turns shopper requests into outfit recommendations
type RecommendationService struct {
	generator  OutfitGenerator
	parser     *styling.IntentParser
	itemRepo   catalog.ItemRepository
	outfitRepo styling.OutfitRepository
	images     *catalogapp.ImageURLResolver
	cache      RecommendationCache
	metrics    RecommendationMetrics
	config     RecommendationConfig
	logger     *zap.Logger
}

// RecommendationServiceOption configures optional collaborators
type RecommendationServiceOption func(*RecommendationService)

// WithCache enables response caching
func WithCache(cache RecommendationCache) RecommendationServiceOption {
	return func(s *RecommendationService) {
		s.cache = cache
	}
}

// WithMetrics records pipeline metrics
func WithMetrics(metrics RecommendationMetrics) RecommendationServiceOption {
	return func(s *RecommendationService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithImageResolver attaches image URLs to outfit items
func WithImageResolver(images *catalogapp.ImageURLResolver) RecommendationServiceOption {
	return func(s *RecommendationService) {
		s.images = images
	}
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(
	generator OutfitGenerator,
	itemRepo catalog.ItemRepository,
	outfitRepo styling.OutfitRepository,
	config RecommendationConfig,
	logger *zap.Logger,
	opts ...RecommendationServiceOption,
) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultRecommendationConfig()
	if config.DefaultMaxOutfits <= 0 {
		config.DefaultMaxOutfits = defaults.DefaultMaxOutfits
	}
	if config.MaxOutfitsLimit <= 0 {
		config.MaxOutfitsLimit = defaults.MaxOutfitsLimit
	}
	if config.CandidateLimit <= 0 {
		config.CandidateLimit = defaults.CandidateLimit
	}
	if strings.TrimSpace(config.DefaultIntent) == "" {
		config.DefaultIntent = defaults.DefaultIntent
	}

	s := &RecommendationService{
		generator:  generator,
		parser:     styling.NewIntentParser(),
		itemRepo:   itemRepo,
		outfitRepo: outfitRepo,
		metrics:    noopMetrics{},
		config:     config,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseIntent turns free text into a structured intent
func (s *RecommendationService) ParseIntent(query string) styling.Intent {
	intent := s.parser.Parse(query)
	if strings.TrimSpace(intent.Intent) == "" {
		intent.Intent = s.config.DefaultIntent
	}
	return intent
}

// Recommend builds outfits for a shop from a structured intent and/or free-text query
func (s *RecommendationService) Recommend(ctx context.Context, tenantID uuid.UUID, req RecommendRequest) (*RecommendResponse, error) {
	start := time.Now()
	intent := s.buildIntent(req)
	maxOutfits := s.clampMaxOutfits(req.MaxOutfits)

	ctx, span := telemetry.StartServiceSpan(ctx, "recommendation", "recommend",
		telemetry.WithAttribute(telemetry.SpanAttrShopID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrIntent, intent.Label()),
		telemetry.WithAttribute(telemetry.SpanAttrMaxOutfits, maxOutfits),
	)
	defer span.End()

	resp, err := s.recommend(ctx, tenantID, intent, maxOutfits, req)
	telemetry.RecordError(span, err)

	outcome := RecommendationOutcome{
		Intent:   intent.Label(),
		Duration: time.Since(start),
		Err:      err,
	}
	if resp != nil {
		outcome.Outfits = len(resp.Outfits)
		outcome.Cached = resp.Cached
		for _, o := range resp.Outfits {
			if o.RationaleFallback {
				outcome.Fallbacks++
			}
		}
		telemetry.SetAttributes(span,
			telemetry.SpanAttrOutfits, outcome.Outfits,
			telemetry.SpanAttrCached, outcome.Cached,
			telemetry.SpanAttrFallbacks, outcome.Fallbacks,
		)
	}
	s.metrics.RecordRecommendation(ctx, outcome)

	return resp, err
}

func (s *RecommendationService) recommend(ctx context.Context, tenantID uuid.UUID, intent styling.Intent, maxOutfits int, req RecommendRequest) (*RecommendResponse, error) {
	if maxOutfits == 0 {
		return &RecommendResponse{Intent: intent, Outfits: []OutfitResponse{}, GeneratedAt: time.Now()}, nil
	}

	cacheKey := s.cacheKey(ctx, tenantID, intent, maxOutfits)
	if cacheKey != "" && !req.Persist {
		if cached, ok := s.cachedResponse(ctx, cacheKey); ok {
			telemetry.AddEvent(telemetry.SpanFromContext(ctx), "cache_hit")
			return cached, nil
		}
	}

	candidates, err := s.itemRepo.FindInStock(ctx, tenantID, s.config.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate items: %w", err)
	}
	telemetry.AddEvent(telemetry.SpanFromContext(ctx), "candidates_loaded", telemetry.SpanAttrCandidates, len(candidates))

	outfits, err := s.generator.GenerateRecommendations(ctx, tenantID, intent, candidates, maxOutfits)
	if err != nil {
		s.logger.Error("Recommendation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("intent", intent.Label()),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &RecommendResponse{
		Intent:      intent,
		Outfits:     make([]OutfitResponse, len(outfits)),
		GeneratedAt: time.Now(),
	}
	for i, o := range outfits {
		resp.Outfits[i] = s.toOutfitResponse(ctx, o)
	}

	if cacheKey != "" {
		s.store(ctx, cacheKey, resp)
	}

	if req.Persist && len(outfits) > 0 {
		if err := s.persist(ctx, tenantID, intent, req.Query, outfits, resp); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Recommendations generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("intent", intent.Label()),
		zap.Int("candidates", len(candidates)),
		zap.Int("outfits", len(outfits)),
	)
	return resp, nil
}

// buildIntent parses the query and lets structured fields override the result
func (s *RecommendationService) buildIntent(req RecommendRequest) styling.Intent {
	var intent styling.Intent
	if strings.TrimSpace(req.Query) != "" {
		intent = s.parser.Parse(req.Query)
	}
	intent = intent.Merge(req.IntentInput.ToDomain())
	if strings.TrimSpace(intent.Intent) == "" {
		intent.Intent = s.config.DefaultIntent
	}
	return intent
}

func (s *RecommendationService) clampMaxOutfits(requested *int) int {
	if requested == nil {
		return s.config.DefaultMaxOutfits
	}
	switch n := *requested; {
	case n < 0:
		return 0
	case n > s.config.MaxOutfitsLimit:
		return s.config.MaxOutfitsLimit
	default:
		return n
	}
}

// cacheKeyPrefix returns the prefix shared by a shop's cached recommendations
func cacheKeyPrefix(tenantID uuid.UUID) string {
	return "reco:" + tenantID.String() + ":"
}

// cacheKey returns the response cache key, or "" when caching is unavailable.
// The catalog version is part of the key so stock and item edits miss the cache.
func (s *RecommendationService) cacheKey(ctx context.Context, tenantID uuid.UUID, intent styling.Intent, maxOutfits int) string {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return ""
	}
	version, err := s.itemRepo.CatalogVersion(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to read catalog version, skipping cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return ""
	}
	return fmt.Sprintf("%s%s:%d:%s", cacheKeyPrefix(tenantID), intent.CacheKey(), maxOutfits, version)
}

func (s *RecommendationService) cachedResponse(ctx context.Context, key string) (*RecommendResponse, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Recommendation cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp RecommendResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

// store caches the response before any outfit IDs are attached
func (s *RecommendationService) store(ctx context.Context, key string, resp *RecommendResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("Failed to encode recommendation response", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.config.CacheTTL); err != nil {
		s.logger.Warn("Recommendation cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RecommendationService) persist(ctx context.Context, tenantID uuid.UUID, intent styling.Intent, query string, outfits []styling.Outfit, resp *RecommendResponse) error {
	records := make([]*styling.OutfitRecord, 0, len(outfits))
	for _, o := range outfits {
		record, err := styling.NewOutfitRecord(tenantID, intent, query, o)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	if err := s.outfitRepo.SaveBatch(ctx, records); err != nil {
		return fmt.Errorf("failed to save outfits: %w", err)
	}

	for i, record := range records {
		id := record.ID
		resp.Outfits[i].ID = &id
	}
	return nil
}

func (s *RecommendationService) toOutfitResponse(ctx context.Context, outfit styling.Outfit) OutfitResponse {
	resp := ToOutfitResponse(outfit)
	for i := range resp.Items {
		resp.Items[i].ImageURL = s.images.Resolve(ctx, resp.Items[i].ImageKey)
	}
	return resp
}
