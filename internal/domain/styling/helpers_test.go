package styling

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testTenant = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type stubRuleReader struct {
	mu        sync.Mutex
	rules     map[string][]Rule
	err       error
	panicWith any
	calls     []string
}

func (s *stubRuleReader) FindActiveByIntent(_ context.Context, _ uuid.UUID, intent string) ([]Rule, error) {
	s.mu.Lock()
	s.calls = append(s.calls, intent)
	s.mu.Unlock()
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rules[intent], nil
}

type rationaleFunc func(ctx context.Context, req RationaleRequest) (string, error)

func (f rationaleFunc) Generate(ctx context.Context, req RationaleRequest) (string, error) {
	return f(ctx, req)
}

func mustRule(t *testing.T, name, intent string, spec ConstraintSpec, priority int) Rule {
	t.Helper()
	rule, err := NewRule(testTenant, name, intent, spec, priority)
	require.NoError(t, err)
	return *rule
}

func testItem(t *testing.T, sku, category, color, material string, price float64) catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(testTenant, sku, sku+" title", decimal.NewFromFloat(price))
	require.NoError(t, err)
	item.SetAttributes(catalog.VisionAttributes{
		Category: catalog.Category(category),
		Color:    color,
		Material: material,
	})
	return *item
}

func floatPtr(v float64) *float64 {
	return &v
}

func skus(outfit Outfit) []string {
	out := make([]string, len(outfit.Items))
	for i, it := range outfit.Items {
		out[i] = it.SKU
	}
	return out
}
