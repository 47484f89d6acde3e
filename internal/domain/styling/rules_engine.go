package styling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ScoredItem is a candidate that passed every hard constraint, annotated
// with its rule score in [0,1]
type ScoredItem struct {
	Item    *catalog.Item
	Score   float64
	Matched []string
}

// RulesEngine resolves rule sets for intents and scores items against them
type RulesEngine struct {
	rules  RuleReader
	logger *zap.Logger
}

// NewRulesEngine creates a new rules engine
func NewRulesEngine(rules RuleReader, logger *zap.Logger) *RulesEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RulesEngine{
		rules:  rules,
		logger: logger,
	}
}

// GetRulesForIntent returns the active rules for the intent label.
// When the label has no rules the casual rule set is used instead. An empty
// rule set means no rules are configured and nothing can be recommended.
// Storage failures are returned wrapped in shared.ErrRulesUnavailable.
func (e *RulesEngine) GetRulesForIntent(ctx context.Context, tenantID uuid.UUID, label string) (*RuleSet, error) {
	label = normalizeLabel(label)
	if label == "" {
		label = DefaultIntentLabel
	}

	rules, err := e.rules.FindActiveByIntent(ctx, tenantID, label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRulesUnavailable, err)
	}
	if len(rules) > 0 {
		return NewRuleSet(label, rules), nil
	}
	if label == DefaultIntentLabel {
		return NewRuleSet(label, nil), nil
	}

	e.logger.Debug("No rules for intent, falling back to default",
		zap.String("intent", label),
		zap.String("fallback", DefaultIntentLabel),
	)
	rules, err = e.rules.FindActiveByIntent(ctx, tenantID, DefaultIntentLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRulesUnavailable, err)
	}
	return NewRuleSet(DefaultIntentLabel, rules), nil
}

// ApplyRulesToItems filters items by the hard constraints of the rule set
// and scores the survivors by the soft ones.
//
// An item passing only hard constraints scores 0.5; each matched soft
// constraint raises the score in proportion to its weight, up to 1.0.
// Output keeps the input order. Scoring runs on copies whose attributes
// are normalized; the caller's items are left untouched.
func (e *RulesEngine) ApplyRulesToItems(items []catalog.Item, rs *RuleSet, intent Intent) []ScoredItem {
	items = normalizedCopy(items)
	constraints := rs.Constraints(intent)

	var hard, soft []Constraint
	var totalWeight float64
	for _, c := range constraints {
		if c.Kind() == ConstraintHard {
			hard = append(hard, c)
			continue
		}
		soft = append(soft, c)
		totalWeight += c.Weight()
	}

	scored := make([]ScoredItem, 0, len(items))
	for i := range items {
		item := &items[i]
		if !passesAll(item, hard) {
			continue
		}

		var matchedWeight float64
		var matched []string
		for _, c := range soft {
			if c.Evaluate(item) {
				matchedWeight += c.Weight()
				matched = append(matched, c.Key())
			}
		}

		scored = append(scored, ScoredItem{
			Item:    item,
			Score:   softScore(matchedWeight, totalWeight),
			Matched: matched,
		})
	}

	e.logger.Debug("Applied rules to items",
		zap.Strings("rules", rs.Names()),
		zap.Int("candidates", len(items)),
		zap.Int("passed", len(scored)),
		zap.Int("hard_constraints", len(hard)),
		zap.Int("soft_constraints", len(soft)),
	)

	return scored
}

func passesAll(item *catalog.Item, hard []Constraint) bool {
	for _, c := range hard {
		if !c.Evaluate(item) {
			return false
		}
	}
	return true
}

func softScore(matched, total float64) float64 {
	if total <= 0 {
		return 0.5
	}
	return clamp01(0.5 + 0.5*matched/total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizedCopy(items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, len(items))
	for i, item := range items {
		item.Attributes = item.Attributes.Normalize()
		out[i] = item
	}
	return out
}
