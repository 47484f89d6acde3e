package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRule(t *testing.T, tenantID uuid.UUID, name, intent string, priority int, offset int) *styling.Rule {
	t.Helper()
	rule, err := styling.NewRule(tenantID, name, intent, styling.ConstraintSpec{
		Colors:  []string{"navy", "white"},
		Weights: map[string]float64{styling.KeyColor: 2},
	}, priority)
	require.NoError(t, err)
	rule.CreatedAt = itemEpoch.Add(time.Duration(offset) * time.Minute)
	return rule
}

func TestGormRuleRepository_FindActiveByIntent(t *testing.T) {
	repo := NewGormRuleRepository(setupTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	low := newTestRule(t, tenantID, "Low", "work", 2, 0)
	highLater := newTestRule(t, tenantID, "High later", "work", 8, 2)
	highFirst := newTestRule(t, tenantID, "High first", "work", 8, 1)
	inactive := newTestRule(t, tenantID, "Inactive", "work", 10, 3)
	require.NoError(t, inactive.Deactivate())
	otherIntent := newTestRule(t, tenantID, "Gym", "sport", 9, 4)

	for _, r := range []*styling.Rule{low, highLater, highFirst, inactive, otherIntent} {
		require.NoError(t, repo.Save(ctx, r))
	}

	rules, err := repo.FindActiveByIntent(ctx, tenantID, " WORK ")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "High first", rules[0].Name)
	assert.Equal(t, "High later", rules[1].Name)
	assert.Equal(t, "Low", rules[2].Name)
	assert.Equal(t, []string{"navy", "white"}, rules[0].Constraints.Colors)
	assert.Equal(t, 2.0, rules[0].Constraints.WeightFor(styling.KeyColor))

	none, err := repo.FindActiveByIntent(ctx, uuid.New(), "work")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormRuleRepository_CRUD(t *testing.T) {
	repo := NewGormRuleRepository(setupTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	rule := newTestRule(t, tenantID, "Office basics", "work", 5, 0)
	require.NoError(t, repo.Save(ctx, rule))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, "Office basics", found.Name)
		assert.True(t, found.Active)

		_, err = repo.FindByIDForTenant(ctx, uuid.New(), rule.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by name", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, tenantID, "Office basics")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, tenantID, "Weekend")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("deactivation persists", func(t *testing.T) {
		active, err := repo.HasAnyActive(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, active)

		require.NoError(t, rule.Deactivate())
		require.NoError(t, repo.Save(ctx, rule))

		active, err = repo.HasAnyActive(ctx, tenantID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, rule.ID))
		assert.ErrorIs(t, repo.DeleteForTenant(ctx, tenantID, rule.ID), shared.ErrNotFound)
	})
}

func TestGormRuleRepository_FindAllForTenant(t *testing.T) {
	repo := NewGormRuleRepository(setupTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	a := newTestRule(t, tenantID, "Alpha", "work", 3, 0)
	b := newTestRule(t, tenantID, "Beta", "work", 7, 1)
	c := newTestRule(t, tenantID, "Gamma", "date", 5, 2)
	require.NoError(t, c.Deactivate())
	for _, r := range []*styling.Rule{a, b, c} {
		require.NoError(t, repo.Save(ctx, r))
	}

	t.Run("defaults to priority descending", func(t *testing.T) {
		rules, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, rules, 3)
		assert.Equal(t, "Beta", rules[0].Name)
		assert.Equal(t, "Gamma", rules[1].Name)
		assert.Equal(t, "Alpha", rules[2].Name)
	})

	t.Run("intent and active filters", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["intent"] = "work"
		filter.Filters["active"] = true
		rules, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, rules, 2)

		filter = shared.DefaultFilter()
		filter.Filters["active"] = false
		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("search by name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "alp"
		rules, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "Alpha", rules[0].Name)
	})
}
