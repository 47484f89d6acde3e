package styling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStorage struct{}

func (fakeStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://upload.test/" + key, time.Now().Add(expiresIn), nil
}

func (fakeStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://cdn.test/" + key, time.Now().Add(expiresIn), nil
}

func (fakeStorage) DeleteObject(context.Context, string) error {
	return nil
}

func sampleOutfit() styling.Outfit {
	return styling.Outfit{
		Items: []styling.OutfitItem{
			{ItemID: uuid.New(), SKU: "TOP-1", Title: "White Tee", Role: catalog.CategoryTop, Price: decimal.NewFromInt(30), Score: 0.9, ImageKey: "items/top.jpg"},
			{ItemID: uuid.New(), SKU: "JEANS-1", Title: "Black Jeans", Role: catalog.CategoryBottom, Price: decimal.NewFromInt(50), Score: 0.7},
		},
		Score:     0.8,
		Rationale: "A Casual look pairing White Tee as the top and Black Jeans as the bottom.",
		Matched:   []string{"color"},
	}
}

func sampleCandidates(t *testing.T, tenantID uuid.UUID) []catalog.Item {
	t.Helper()
	var items []catalog.Item
	for _, spec := range []struct {
		sku, category, color string
		price                int64
	}{
		{"TOP-1", "top", "white", 30},
		{"JEANS-1", "jeans", "black", 50},
		{"SNEAKER-1", "sneakers", "white", 80},
	} {
		item, err := catalog.NewItem(tenantID, spec.sku, spec.sku, decimal.NewFromInt(spec.price))
		require.NoError(t, err)
		item.SetAttributes(catalog.VisionAttributes{Category: catalog.Category(spec.category), Color: spec.color})
		items = append(items, *item)
	}
	return items
}

type recommendationFixture struct {
	items     *MockItemRepository
	outfits   *MockOutfitRepository
	generator *MockOutfitGenerator
	cache     *memoryCache
	metrics   *recordingMetrics
	svc       *RecommendationService
}

func newRecommendationFixture(t *testing.T) *recommendationFixture {
	t.Helper()
	f := &recommendationFixture{
		items:     new(MockItemRepository),
		outfits:   new(MockOutfitRepository),
		generator: new(MockOutfitGenerator),
		cache:     newMemoryCache(),
		metrics:   &recordingMetrics{},
	}
	f.svc = NewRecommendationService(f.generator, f.items, f.outfits, DefaultRecommendationConfig(), zaptest.NewLogger(t),
		WithCache(f.cache),
		WithMetrics(f.metrics),
		WithImageResolver(catalogapp.NewImageURLResolver(fakeStorage{}, time.Hour)),
	)
	return f
}

func intPtr(v int) *int {
	return &v
}

func TestRecommend_BuildsIntentFromQueryAndFields(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)
	candidates := sampleCandidates(t, tenantID)

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return(candidates, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID,
		mock.MatchedBy(func(in styling.Intent) bool {
			return in.Intent == "work" &&
				in.BudgetMax != nil && *in.BudgetMax == 120 &&
				len(in.Palette) == 1 && in.Palette[0] == "black" &&
				in.Size == "M"
		}),
		candidates, 3,
	).Return([]styling.Outfit{sampleOutfit()}, nil)

	resp, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{
		Query:       "Smart casual office look under $120 in navy, size M",
		IntentInput: IntentInput{Palette: []string{"black"}},
	})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, "work", resp.Intent.Intent)
	require.Len(t, resp.Outfits, 1)
	outfit := resp.Outfits[0]
	assert.Nil(t, outfit.ID)
	assert.True(t, outfit.TotalPrice.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "https://cdn.test/items/top.jpg", outfit.Items[0].ImageURL)
	assert.Empty(t, outfit.Items[1].ImageURL)
	f.generator.AssertExpectations(t)
}

func TestRecommend_DefaultIntent(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID,
		mock.MatchedBy(func(in styling.Intent) bool { return in.Intent == "casual" }),
		[]catalog.Item{}, 3,
	).Return([]styling.Outfit{}, nil)

	resp, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Outfits)
	assert.NotNil(t, resp.Outfits)
}

func TestRecommend_ClampsMaxOutfits(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("caps at the configured limit", func(t *testing.T) {
		f := newRecommendationFixture(t)
		f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
		f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
		f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, []catalog.Item{}, 10).
			Return([]styling.Outfit{}, nil)

		_, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{MaxOutfits: intPtr(50)})
		require.NoError(t, err)
		f.generator.AssertExpectations(t)
	})

	for _, n := range []int{0, -3} {
		t.Run(fmt.Sprintf("max_outfits=%d returns nothing without loading items", n), func(t *testing.T) {
			f := newRecommendationFixture(t)
			resp, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{MaxOutfits: intPtr(n)})
			require.NoError(t, err)
			assert.Empty(t, resp.Outfits)
			f.items.AssertNotCalled(t, "FindInStock", mock.Anything, mock.Anything, mock.Anything)
			f.generator.AssertNotCalled(t, "GenerateRecommendations", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecommend_Cache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)
	candidates := sampleCandidates(t, tenantID)

	version := f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return(candidates, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, candidates, 2).
		Return([]styling.Outfit{sampleOutfit()}, nil)

	req := RecommendRequest{IntentInput: IntentInput{Intent: "casual"}, MaxOutfits: intPtr(2)}

	first, err := f.svc.Recommend(ctx, tenantID, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := f.svc.Recommend(ctx, tenantID, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Outfits[0].Rationale, second.Outfits[0].Rationale)
	assert.Equal(t, first.Outfits[0].Items[0].SKU, second.Outfits[0].Items[0].SKU)
	f.generator.AssertNumberOfCalls(t, "GenerateRecommendations", 1)

	// a catalog change moves the key
	version.Unset()
	f.items.On("CatalogVersion", ctx, tenantID).Return("v2", nil)
	third, err := f.svc.Recommend(ctx, tenantID, req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	f.generator.AssertNumberOfCalls(t, "GenerateRecommendations", 2)

	require.Len(t, f.metrics.outcomes, 3)
	assert.True(t, f.metrics.outcomes[1].Cached)
	assert.Equal(t, 1, f.metrics.outcomes[1].Outfits)
}

func TestRecommend_CacheFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)
	f.cache.err = errors.New("redis down")

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, []catalog.Item{}, 3).
		Return([]styling.Outfit{sampleOutfit()}, nil)

	resp, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Outfits, 1)
}

func TestRecommend_Persist(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, []catalog.Item{}, 3).
		Return([]styling.Outfit{sampleOutfit()}, nil)

	var saved []*styling.OutfitRecord
	f.outfits.On("SaveBatch", ctx, mock.AnythingOfType("[]*styling.OutfitRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]*styling.OutfitRecord) }).
		Return(nil)

	req := RecommendRequest{Query: "date night", Persist: true}
	resp, err := f.svc.Recommend(ctx, tenantID, req)
	require.NoError(t, err)

	require.Len(t, saved, 1)
	require.NotNil(t, resp.Outfits[0].ID)
	assert.Equal(t, saved[0].ID, *resp.Outfits[0].ID)
	assert.Equal(t, "date night", saved[0].Query)
	assert.Equal(t, tenantID, saved[0].TenantID)

	// persisted requests always regenerate
	_, err = f.svc.Recommend(ctx, tenantID, req)
	require.NoError(t, err)
	f.generator.AssertNumberOfCalls(t, "GenerateRecommendations", 2)

	// the cached copy carries no outfit IDs
	cached, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{Query: "date night"})
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Nil(t, cached.Outfits[0].ID)
}

func TestRecommend_PersistFailure(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, []catalog.Item{}, 3).
		Return([]styling.Outfit{sampleOutfit()}, nil)
	f.outfits.On("SaveBatch", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{Persist: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRecommend_RulesUnavailable(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)

	f.items.On("CatalogVersion", ctx, tenantID).Return("v1", nil)
	f.items.On("FindInStock", ctx, tenantID, 500).Return([]catalog.Item{}, nil)
	f.generator.On("GenerateRecommendations", ctx, tenantID, mock.Anything, []catalog.Item{}, 3).
		Return(nil, fmt.Errorf("%w: %v", shared.ErrRulesUnavailable, errors.New("connection refused")))

	resp, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrRulesUnavailable)
	assert.Equal(t, 0, f.cache.len())

	require.Len(t, f.metrics.outcomes, 1)
	assert.Error(t, f.metrics.outcomes[0].Err)
}

func TestRecommend_CandidateLoadFailure(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newRecommendationFixture(t)

	f.items.On("CatalogVersion", ctx, tenantID).Return("", errors.New("timeout"))
	f.items.On("FindInStock", ctx, tenantID, 500).Return(nil, errors.New("timeout"))

	_, err := f.svc.Recommend(ctx, tenantID, RecommendRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load candidate items")
}

func TestRecommend_WithRecommender(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	logger := zaptest.NewLogger(t)

	rule, err := styling.NewRule(tenantID, "Everyday", "casual", styling.ConstraintSpec{
		Categories: []catalog.Category{catalog.CategoryTop, catalog.CategoryBottom, catalog.CategoryShoes},
		Colors:     []string{"white", "black"},
	}, 5)
	require.NoError(t, err)

	rules := new(MockRuleRepository)
	rules.On("FindActiveByIntent", mock.Anything, tenantID, "casual").Return([]styling.Rule{*rule}, nil)

	items := new(MockItemRepository)
	items.On("FindInStock", ctx, tenantID, 500).Return(sampleCandidates(t, tenantID), nil)

	recommender := styling.NewOutfitRecommender(styling.NewRulesEngine(rules, logger), styling.TemplateRationale{},
		styling.DefaultRecommenderConfig(), logger)
	svc := NewRecommendationService(recommender, items, new(MockOutfitRepository), DefaultRecommendationConfig(), logger)

	resp, err := svc.Recommend(ctx, tenantID, RecommendRequest{Query: "something relaxed for the weekend"})
	require.NoError(t, err)
	require.Len(t, resp.Outfits, 1)

	outfit := resp.Outfits[0]
	roles := make([]string, len(outfit.Items))
	for i, it := range outfit.Items {
		roles[i] = it.Role
	}
	assert.Contains(t, roles, "top")
	assert.Contains(t, roles, "bottom")
	assert.NotEmpty(t, outfit.Rationale)
	assert.Contains(t, outfit.Matched, "color")
}

func TestParseIntent(t *testing.T) {
	svc := NewRecommendationService(nil, nil, nil, RecommendationConfig{}, nil)

	intent := svc.ParseIntent("wedding guest outfit under 200 euros")
	assert.Equal(t, "wedding", intent.Intent)

	assert.Equal(t, "casual", svc.ParseIntent("").Intent)
}
