package styling

import (
	"strings"

	"github.com/lookbook/backend/internal/domain/catalog"
)

// DefaultIntentLabel is the intent used when a request names none, and the
// rule set consulted when no rules exist for the requested intent.
const DefaultIntentLabel = "casual"

// Intent is the structured form of a shopper's outfit request.
// It is read-only input to the recommender.
type Intent struct {
	Intent     string   `json:"intent"`
	Activity   string   `json:"activity,omitempty"`
	Occasion   string   `json:"occasion,omitempty"`
	BudgetMax  *float64 `json:"budget_max,omitempty"`
	Objectives []string `json:"objectives,omitempty"`
	Palette    []string `json:"palette,omitempty"`
	Formality  string   `json:"formality,omitempty"`
	Size       string   `json:"size,omitempty"`
}

// Label returns the normalized intent label, defaulting to casual
func (i Intent) Label() string {
	label := strings.ToLower(strings.TrimSpace(i.Intent))
	if label == "" {
		return DefaultIntentLabel
	}
	return label
}

// Budget returns the budget ceiling. A negative ceiling reads as 0, so
// nothing priced above zero fits it.
func (i Intent) Budget() (float64, bool) {
	if i.BudgetMax == nil {
		return 0, false
	}
	return max(*i.BudgetMax, 0), true
}

// PreferredSize returns the parsed size preference.
// A missing or unrecognized size yields false.
func (i Intent) PreferredSize() (catalog.Size, bool) {
	if strings.TrimSpace(i.Size) == "" {
		return "", false
	}
	size, err := catalog.ParseSize(i.Size)
	if err != nil {
		return "", false
	}
	return size, true
}

// NormalizedPalette returns the palette lower-cased with blanks removed
func (i Intent) NormalizedPalette() []string {
	return normalizeList(i.Palette)
}

// Merge returns a copy of i with every field set in override replacing
// the corresponding field in i
func (i Intent) Merge(override Intent) Intent {
	out := i
	if strings.TrimSpace(override.Intent) != "" {
		out.Intent = override.Intent
	}
	if override.Activity != "" {
		out.Activity = override.Activity
	}
	if override.Occasion != "" {
		out.Occasion = override.Occasion
	}
	if override.BudgetMax != nil {
		budget := *override.BudgetMax
		out.BudgetMax = &budget
	}
	if len(override.Objectives) > 0 {
		out.Objectives = append([]string(nil), override.Objectives...)
	}
	if len(override.Palette) > 0 {
		out.Palette = append([]string(nil), override.Palette...)
	}
	if override.Formality != "" {
		out.Formality = override.Formality
	}
	if override.Size != "" {
		out.Size = override.Size
	}
	return out
}

// CacheKey returns a canonical string identifying the intent
func (i Intent) CacheKey() string {
	var b strings.Builder
	b.WriteString(i.Label())
	b.WriteString("|")
	b.WriteString(strings.ToLower(i.Activity))
	b.WriteString("|")
	b.WriteString(strings.ToLower(i.Occasion))
	b.WriteString("|")
	if budget, ok := i.Budget(); ok {
		b.WriteString(formatAmount(budget))
	}
	b.WriteString("|")
	b.WriteString(strings.Join(normalizeList(i.Objectives), ","))
	b.WriteString("|")
	b.WriteString(strings.Join(i.NormalizedPalette(), ","))
	b.WriteString("|")
	b.WriteString(strings.ToLower(i.Formality))
	b.WriteString("|")
	if size, ok := i.PreferredSize(); ok {
		b.WriteString(string(size))
	}
	return b.String()
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
