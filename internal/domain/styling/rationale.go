package styling

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RationaleRequest carries what a generator needs to explain one outfit
type RationaleRequest struct {
	Intent Intent
	Outfit Outfit
	Rules  []string
}

// RationaleGenerator writes a human-readable explanation for an outfit.
// Implementations may call remote services and may fail.
type RationaleGenerator interface {
	Generate(ctx context.Context, req RationaleRequest) (string, error)
}

// RationaleResult is the outcome of a bounded rationale call.
// Text is never empty; Fallback reports that the template was used.
type RationaleResult struct {
	Text     string
	Fallback bool
	Err      error
}

// TemplateRationale builds deterministic rationales without external calls
type TemplateRationale struct{}

// Generate never fails and never returns an empty string
func (TemplateRationale) Generate(_ context.Context, req RationaleRequest) (string, error) {
	return TemplateRationaleText(req), nil
}

// TemplateRationaleText renders the templated explanation for an outfit
func TemplateRationaleText(req RationaleRequest) string {
	var b strings.Builder

	label := cases.Title(language.English).String(req.Intent.Label())
	if occasion := strings.TrimSpace(req.Intent.Occasion); occasion != "" {
		fmt.Fprintf(&b, "A %s look for %s", label, strings.ToLower(occasion))
	} else {
		fmt.Fprintf(&b, "A %s look", label)
	}

	pieces := make([]string, 0, len(req.Outfit.Items))
	for _, it := range req.Outfit.Items {
		pieces = append(pieces, describeOutfitItem(it))
	}
	if len(pieces) > 0 {
		b.WriteString(" pairing ")
		b.WriteString(joinWithAnd(pieces))
	}
	b.WriteString(".")

	if budget, ok := req.Intent.Budget(); ok {
		fmt.Fprintf(&b, " Every piece stays within your budget of %s.", formatAmount(budget))
	}
	if palette := req.Intent.NormalizedPalette(); len(palette) > 0 {
		fmt.Fprintf(&b, " Chosen with your %s palette in mind.", strings.Join(palette, " and "))
	}
	if len(req.Outfit.Matched) > 0 {
		fmt.Fprintf(&b, " Matches the %s guidance of our stylists.", strings.Join(req.Outfit.Matched, ", "))
	}

	return b.String()
}

func describeOutfitItem(it OutfitItem) string {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = it.SKU
	}
	return fmt.Sprintf("%s as the %s", title, it.Role)
}

func joinWithAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
