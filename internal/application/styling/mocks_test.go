package styling

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/stretchr/testify/mock"
)

// MockRuleRepository is a mock implementation of RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindActiveByIntent(ctx context.Context, tenantID uuid.UUID, intent string) ([]styling.Rule, error) {
	args := m.Called(ctx, tenantID, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]styling.Rule), args.Error(1)
}

func (m *MockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*styling.Rule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*styling.Rule), args.Error(1)
}

func (m *MockRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]styling.Rule, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]styling.Rule), args.Error(1)
}

func (m *MockRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRuleRepository) HasAnyActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *styling.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockOutfitRepository is a mock implementation of OutfitRepository
type MockOutfitRepository struct {
	mock.Mock
}

func (m *MockOutfitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*styling.OutfitRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*styling.OutfitRecord), args.Error(1)
}

func (m *MockOutfitRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]styling.OutfitRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]styling.OutfitRecord), args.Error(1)
}

func (m *MockOutfitRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutfitRepository) SaveBatch(ctx context.Context, outfits []*styling.OutfitRecord) error {
	args := m.Called(ctx, outfits)
	return args.Error(0)
}

func (m *MockOutfitRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Item, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindInStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]catalog.Item, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SaveBatch(ctx context.Context, items []*catalog.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockItemRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) CatalogVersion(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockOutfitGenerator is a mock implementation of OutfitGenerator
type MockOutfitGenerator struct {
	mock.Mock
}

func (m *MockOutfitGenerator) GenerateRecommendations(ctx context.Context, tenantID uuid.UUID, intent styling.Intent, candidates []catalog.Item, maxOutfits int) ([]styling.Outfit, error) {
	args := m.Called(ctx, tenantID, intent, candidates, maxOutfits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]styling.Outfit), args.Error(1)
}

// memoryCache is a map-backed RecommendationCache
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// recordingMetrics captures recorded outcomes
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []RecommendationOutcome
}

func (m *recordingMetrics) RecordRecommendation(_ context.Context, outcome RecommendationOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}
