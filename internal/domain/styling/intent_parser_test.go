package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentParser_Parse(t *testing.T) {
	parser := NewIntentParser()

	t.Run("parses a full request", func(t *testing.T) {
		intent := parser.Parse("Smart casual office look under $120 in navy, size M")

		assert.Equal(t, "work", intent.Intent)
		assert.Equal(t, "office", intent.Occasion)
		assert.Equal(t, "smart-casual", intent.Formality)
		require.NotNil(t, intent.BudgetMax)
		assert.Equal(t, 120.0, *intent.BudgetMax)
		assert.Equal(t, []string{"navy"}, intent.Palette)
		assert.Equal(t, "M", intent.Size)
	})

	t.Run("defaults to casual", func(t *testing.T) {
		intent := parser.Parse("something nice")
		assert.Equal(t, DefaultIntentLabel, intent.Intent)
		assert.Empty(t, intent.Occasion)
		assert.Nil(t, intent.BudgetMax)
		assert.Empty(t, intent.Palette)
	})

	t.Run("reads bare currency amounts", func(t *testing.T) {
		intent := parser.Parse("wedding guest outfit, €250")
		assert.Equal(t, "wedding", intent.Intent)
		require.NotNil(t, intent.BudgetMax)
		assert.Equal(t, 250.0, *intent.BudgetMax)
	})

	t.Run("collects activity and objectives", func(t *testing.T) {
		intent := parser.Parse("comfortable and warm layers for hiking, black or olive")
		assert.Equal(t, "sport", intent.Intent)
		assert.Equal(t, "hiking", intent.Activity)
		assert.Equal(t, []string{"comfort", "warmth", "layering"}, intent.Objectives)
		assert.Equal(t, []string{"black", "olive"}, intent.Palette)
	})

	t.Run("parses size words", func(t *testing.T) {
		intent := parser.Parse("date night dress size small")
		assert.Equal(t, "date", intent.Intent)
		assert.Equal(t, "date night", intent.Occasion)
		size, ok := intent.PreferredSize()
		require.True(t, ok)
		assert.Equal(t, "S", string(size))
	})

	t.Run("is deterministic", func(t *testing.T) {
		text := "party in red and black, budget of 80, size XL"
		assert.Equal(t, parser.Parse(text), parser.Parse(text))
	})
}
