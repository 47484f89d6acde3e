package styling

import (
	"strconv"
	"strings"

	"github.com/lookbook/backend/internal/domain/catalog"
)

// ConstraintKind distinguishes filters from preferences
type ConstraintKind string

const (
	// ConstraintHard excludes items that fail it
	ConstraintHard ConstraintKind = "hard"
	// ConstraintSoft raises the score of items that satisfy it
	ConstraintSoft ConstraintKind = "soft"
)

// Constraint keys. A key identifies one constraint slot when rules are merged.
const (
	KeyCategory = "category"
	KeyMaxPrice = "max_price"
	KeyBudget   = "budget"
	KeySize     = "size"
	KeyColor    = "color"
	KeyMaterial = "material"
	KeyPattern  = "pattern"
	KeyOccasion = "occasion"
	KeyFit      = "fit"
	KeyPalette  = "palette"
)

// DefaultSoftWeight is applied to soft constraints with no configured weight
const DefaultSoftWeight = 1.0

// Constraint is a single typed check of an item.
// Hard constraints report pass/fail; soft constraints report match/no match.
type Constraint interface {
	Key() string
	Kind() ConstraintKind
	Weight() float64
	Evaluate(item *catalog.Item) bool
	Describe() string
}

// CategoryConstraint admits only items in the allowed buckets
type CategoryConstraint struct {
	Allowed []catalog.Category
}

func (c CategoryConstraint) Key() string          { return KeyCategory }
func (c CategoryConstraint) Kind() ConstraintKind { return ConstraintHard }
func (c CategoryConstraint) Weight() float64      { return 0 }

// Evaluate checks the item's bucket against the allowed categories
func (c CategoryConstraint) Evaluate(item *catalog.Item) bool {
	bucket := item.Category().Bucket()
	for _, allowed := range c.Allowed {
		if allowed.Bucket() == bucket {
			return true
		}
	}
	return false
}

func (c CategoryConstraint) Describe() string {
	names := make([]string, len(c.Allowed))
	for i, cat := range c.Allowed {
		names[i] = cat.String()
	}
	return "categories " + strings.Join(names, ", ")
}

// PriceCeilingConstraint excludes items priced above a rule's ceiling
type PriceCeilingConstraint struct {
	Max float64
}

func (c PriceCeilingConstraint) Key() string          { return KeyMaxPrice }
func (c PriceCeilingConstraint) Kind() ConstraintKind { return ConstraintHard }
func (c PriceCeilingConstraint) Weight() float64      { return 0 }

func (c PriceCeilingConstraint) Evaluate(item *catalog.Item) bool {
	return item.PriceFloat() <= c.Max
}

func (c PriceCeilingConstraint) Describe() string {
	return "priced at most " + formatAmount(c.Max)
}

// BudgetConstraint excludes items priced above the shopper's budget
type BudgetConstraint struct {
	Max float64
}

func (c BudgetConstraint) Key() string          { return KeyBudget }
func (c BudgetConstraint) Kind() ConstraintKind { return ConstraintHard }
func (c BudgetConstraint) Weight() float64      { return 0 }

func (c BudgetConstraint) Evaluate(item *catalog.Item) bool {
	return item.PriceFloat() <= c.Max
}

func (c BudgetConstraint) Describe() string {
	return "within a budget of " + formatAmount(c.Max)
}

// SizeConstraint excludes items not stocked in the requested size.
// Items with no recorded sizes are treated as unknown and pass.
type SizeConstraint struct {
	Size catalog.Size
}

func (c SizeConstraint) Key() string          { return KeySize }
func (c SizeConstraint) Kind() ConstraintKind { return ConstraintHard }
func (c SizeConstraint) Weight() float64      { return 0 }

func (c SizeConstraint) Evaluate(item *catalog.Item) bool {
	if item.Sizes.IsEmpty() {
		return true
	}
	return item.HasSize(c.Size)
}

func (c SizeConstraint) Describe() string {
	return "available in size " + string(c.Size)
}

// attributeMatch is the shared shape of the allow-list soft constraints
type attributeMatch struct {
	key     string
	label   string
	allowed []string
	weight  float64
	value   func(catalog.VisionAttributes) string
}

func (c attributeMatch) Key() string          { return c.key }
func (c attributeMatch) Kind() ConstraintKind { return ConstraintSoft }
func (c attributeMatch) Weight() float64      { return c.weight }

// Evaluate reports whether the attribute is one of the allowed values.
// Unknown attributes never match.
func (c attributeMatch) Evaluate(item *catalog.Item) bool {
	v := c.value(item.Attributes)
	if !catalog.Known(v) {
		return false
	}
	for _, a := range c.allowed {
		if a == v {
			return true
		}
	}
	return false
}

func (c attributeMatch) Describe() string {
	return c.label + " " + strings.Join(c.allowed, "/")
}

// ColorConstraint prefers items in the allowed colors
func ColorConstraint(allowed []string, weight float64) Constraint {
	return attributeMatch{key: KeyColor, label: "colors", allowed: normalizeList(allowed), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Color }}
}

// MaterialConstraint prefers items in the allowed materials
func MaterialConstraint(allowed []string, weight float64) Constraint {
	return attributeMatch{key: KeyMaterial, label: "materials", allowed: normalizeList(allowed), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Material }}
}

// PatternConstraint prefers items with the allowed patterns
func PatternConstraint(allowed []string, weight float64) Constraint {
	return attributeMatch{key: KeyPattern, label: "patterns", allowed: normalizeList(allowed), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Pattern }}
}

// OccasionConstraint prefers items suited to the allowed occasions
func OccasionConstraint(allowed []string, weight float64) Constraint {
	return attributeMatch{key: KeyOccasion, label: "occasions", allowed: normalizeList(allowed), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Occasion }}
}

// FitConstraint prefers items with the allowed fits
func FitConstraint(allowed []string, weight float64) Constraint {
	return attributeMatch{key: KeyFit, label: "fits", allowed: normalizeList(allowed), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Fit }}
}

// PaletteConstraint prefers items in the shopper's palette
func PaletteConstraint(palette []string, weight float64) Constraint {
	return attributeMatch{key: KeyPalette, label: "palette", allowed: normalizeList(palette), weight: weight,
		value: func(a catalog.VisionAttributes) string { return a.Color }}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
