package styling

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
)

// softKeys lists the soft constraint keys that accept a weight
var softKeys = map[string]struct{}{
	KeyColor:    {},
	KeyMaterial: {},
	KeyPattern:  {},
	KeyOccasion: {},
	KeyFit:      {},
	KeyPalette:  {},
}

// ConstraintSpec is the persisted form of a rule's constraints.
// Empty lists mean the constraint is not set.
type ConstraintSpec struct {
	Categories []catalog.Category `json:"categories,omitempty"`
	Colors     []string           `json:"colors,omitempty"`
	Materials  []string           `json:"materials,omitempty"`
	Patterns   []string           `json:"patterns,omitempty"`
	Occasions  []string           `json:"occasions,omitempty"`
	Fits       []string           `json:"fits,omitempty"`
	MaxPrice   *float64           `json:"max_price,omitempty"`
	Weights    map[string]float64 `json:"weights,omitempty"`
}

// Normalize returns a copy with lower-cased, de-duplicated value lists
// and categories parsed to their canonical form
func (s ConstraintSpec) Normalize() ConstraintSpec {
	out := ConstraintSpec{
		Colors:    normalizeList(s.Colors),
		Materials: normalizeList(s.Materials),
		Patterns:  normalizeList(s.Patterns),
		Occasions: normalizeList(s.Occasions),
		Fits:      normalizeList(s.Fits),
	}
	seen := make(map[catalog.Category]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		parsed := catalog.ParseCategory(string(c))
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		out.Categories = append(out.Categories, parsed)
	}
	if s.MaxPrice != nil {
		v := *s.MaxPrice
		out.MaxPrice = &v
	}
	if len(s.Weights) > 0 {
		out.Weights = make(map[string]float64, len(s.Weights))
		for k, v := range s.Weights {
			out.Weights[k] = v
		}
	}
	return out
}

// Validate checks the spec for values the engine cannot evaluate
func (s ConstraintSpec) Validate() error {
	for _, c := range s.Categories {
		if catalog.ParseCategory(string(c)) == catalog.CategoryUnknown {
			return shared.NewDomainError("INVALID_CONSTRAINT", fmt.Sprintf("Unknown category %q", c))
		}
	}
	if s.MaxPrice != nil && *s.MaxPrice < 0 {
		return shared.NewDomainError("INVALID_CONSTRAINT", "Max price cannot be negative")
	}
	for k, w := range s.Weights {
		if _, ok := softKeys[k]; !ok {
			return shared.NewDomainError("INVALID_CONSTRAINT", fmt.Sprintf("Weight given for unknown constraint %q", k))
		}
		if w <= 0 {
			return shared.NewDomainError("INVALID_CONSTRAINT", fmt.Sprintf("Weight for %q must be positive", k))
		}
	}
	return nil
}

// IsEmpty returns true if no constraint is set
func (s ConstraintSpec) IsEmpty() bool {
	return len(s.Categories) == 0 && len(s.Colors) == 0 && len(s.Materials) == 0 &&
		len(s.Patterns) == 0 && len(s.Occasions) == 0 && len(s.Fits) == 0 && s.MaxPrice == nil
}

// WeightFor returns the configured weight for a soft key
func (s ConstraintSpec) WeightFor(key string) float64 {
	if w, ok := s.Weights[key]; ok && w > 0 {
		return w
	}
	return DefaultSoftWeight
}

// Compile turns the spec and the shopper's intent into typed constraints.
// Hard constraints come first, in a fixed order.
func (s ConstraintSpec) Compile(intent Intent) []Constraint {
	var out []Constraint

	if len(s.Categories) > 0 {
		out = append(out, CategoryConstraint{Allowed: s.AdmittedCategories()})
	}
	if s.MaxPrice != nil {
		out = append(out, PriceCeilingConstraint{Max: *s.MaxPrice})
	}
	if budget, ok := intent.Budget(); ok {
		out = append(out, BudgetConstraint{Max: budget})
	}
	if size, ok := intent.PreferredSize(); ok {
		out = append(out, SizeConstraint{Size: size})
	}

	if len(s.Colors) > 0 {
		out = append(out, ColorConstraint(s.Colors, s.WeightFor(KeyColor)))
	}
	if len(s.Materials) > 0 {
		out = append(out, MaterialConstraint(s.Materials, s.WeightFor(KeyMaterial)))
	}
	if len(s.Patterns) > 0 {
		out = append(out, PatternConstraint(s.Patterns, s.WeightFor(KeyPattern)))
	}
	occasions := s.Occasions
	if intent.Occasion != "" {
		occasions = append(append([]string(nil), occasions...), intent.Occasion)
	}
	if len(normalizeList(occasions)) > 0 {
		out = append(out, OccasionConstraint(occasions, s.WeightFor(KeyOccasion)))
	}
	if len(s.Fits) > 0 {
		out = append(out, FitConstraint(s.Fits, s.WeightFor(KeyFit)))
	}
	if palette := intent.NormalizedPalette(); len(palette) > 0 {
		out = append(out, PaletteConstraint(palette, s.WeightFor(KeyPalette)))
	}

	return out
}

// RequiredCategories returns the outfit slots that must be considered first.
// Only top, bottom and dress can be required; with none named the outfit
// needs a top and a bottom.
func (s ConstraintSpec) RequiredCategories() []catalog.Category {
	var required []catalog.Category
	for _, c := range []catalog.Category{catalog.CategoryTop, catalog.CategoryBottom, catalog.CategoryDress} {
		for _, named := range s.Categories {
			if named == c {
				required = append(required, c)
				break
			}
		}
	}
	if len(required) == 0 {
		return []catalog.Category{catalog.CategoryTop, catalog.CategoryBottom}
	}
	return required
}

// AdmittedCategories is the category filter a spec with named categories
// applies: the named categories, the required slots and the optional
// outerwear, shoes and accessory slots. Naming {top, bottom} therefore
// keeps dresses out without starving the optional slots.
func (s ConstraintSpec) AdmittedCategories() []catalog.Category {
	admit := make(map[catalog.Category]bool, len(s.Categories)+len(optionalCategories))
	for _, c := range s.Categories {
		admit[c.Bucket()] = true
	}
	for _, c := range s.RequiredCategories() {
		admit[c] = true
	}
	for _, c := range optionalCategories {
		admit[c] = true
	}
	out := make([]catalog.Category, 0, len(admit))
	for _, c := range catalog.AllBuckets() {
		if admit[c] {
			out = append(out, c)
		}
	}
	return out
}

// Value implements driver.Valuer
func (s ConstraintSpec) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *ConstraintSpec) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = ConstraintSpec{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConstraintSpec", value)
	}
	if len(raw) == 0 {
		*s = ConstraintSpec{}
		return nil
	}
	var spec ConstraintSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("failed to decode constraint spec: %w", err)
	}
	*s = spec
	return nil
}
