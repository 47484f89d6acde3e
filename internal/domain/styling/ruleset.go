package styling

import (
	"sort"

	"github.com/lookbook/backend/internal/domain/catalog"
)

// RuleSet is the collection of active rules resolved for one intent.
// Rules are held in priority order, highest first.
type RuleSet struct {
	Intent string
	Rules  []Rule
	merged ConstraintSpec
}

// NewRuleSet builds a rule set, ignoring inactive rules.
// Rules of equal priority keep their given order.
func NewRuleSet(intent string, rules []Rule) *RuleSet {
	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})
	return &RuleSet{
		Intent: intent,
		Rules:  active,
		merged: mergeSpecs(active),
	}
}

// Empty returns true if the set holds no active rule
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.Rules) == 0
}

// Spec returns the merged constraints.
// For every constraint key the highest-priority rule that sets it wins.
func (rs *RuleSet) Spec() ConstraintSpec {
	if rs == nil {
		return ConstraintSpec{}
	}
	return rs.merged
}

// Constraints compiles the merged spec against an intent
func (rs *RuleSet) Constraints(intent Intent) []Constraint {
	return rs.Spec().Compile(intent)
}

// RequiredCategories returns the outfit slots the rule set requires
func (rs *RuleSet) RequiredCategories() []catalog.Category {
	return rs.Spec().RequiredCategories()
}

// Names returns the names of the rules in priority order
func (rs *RuleSet) Names() []string {
	if rs == nil {
		return nil
	}
	names := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		names[i] = r.Name
	}
	return names
}

func mergeSpecs(rules []Rule) ConstraintSpec {
	var merged ConstraintSpec
	weights := make(map[string]float64)

	for _, r := range rules {
		spec := r.Constraints.Normalize()
		if merged.Categories == nil && len(spec.Categories) > 0 {
			merged.Categories = spec.Categories
		}
		if merged.Colors == nil && len(spec.Colors) > 0 {
			merged.Colors = spec.Colors
		}
		if merged.Materials == nil && len(spec.Materials) > 0 {
			merged.Materials = spec.Materials
		}
		if merged.Patterns == nil && len(spec.Patterns) > 0 {
			merged.Patterns = spec.Patterns
		}
		if merged.Occasions == nil && len(spec.Occasions) > 0 {
			merged.Occasions = spec.Occasions
		}
		if merged.Fits == nil && len(spec.Fits) > 0 {
			merged.Fits = spec.Fits
		}
		if merged.MaxPrice == nil && spec.MaxPrice != nil {
			merged.MaxPrice = spec.MaxPrice
		}
		for k, w := range spec.Weights {
			if _, ok := weights[k]; !ok {
				weights[k] = w
			}
		}
	}
	if len(weights) > 0 {
		merged.Weights = weights
	}
	return merged
}
