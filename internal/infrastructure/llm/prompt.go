package llm

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/lookbook/backend/internal/domain/styling"
)

const systemPrompt = "You are a friendly fashion stylist for an online shop. " +
	"Explain in two or three sentences why the outfit suits the shopper's request. " +
	"Mention the pieces by name. Do not invent items, prices or discounts. " +
	"Reply with plain text only."

// buildMessages renders the chat messages for one outfit
func buildMessages(req styling.RationaleRequest) []*schema.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Occasion type: %s\n", req.Intent.Label())
	if v := strings.TrimSpace(req.Intent.Occasion); v != "" {
		fmt.Fprintf(&b, "Occasion: %s\n", v)
	}
	if v := strings.TrimSpace(req.Intent.Activity); v != "" {
		fmt.Fprintf(&b, "Activity: %s\n", v)
	}
	if v := strings.TrimSpace(req.Intent.Formality); v != "" {
		fmt.Fprintf(&b, "Formality: %s\n", v)
	}
	if budget, ok := req.Intent.Budget(); ok {
		fmt.Fprintf(&b, "Budget: up to %.2f\n", budget)
	}
	if palette := req.Intent.NormalizedPalette(); len(palette) > 0 {
		fmt.Fprintf(&b, "Preferred colors: %s\n", strings.Join(palette, ", "))
	}
	if len(req.Intent.Objectives) > 0 {
		fmt.Fprintf(&b, "Goals: %s\n", strings.Join(req.Intent.Objectives, ", "))
	}

	b.WriteString("Outfit:\n")
	for _, it := range req.Outfit.Items {
		fmt.Fprintf(&b, "- %s: %s", it.Role, it.Title)
		if details := joinNonEmpty(it.Color, it.Material); details != "" {
			fmt.Fprintf(&b, " (%s)", details)
		}
		fmt.Fprintf(&b, ", %s\n", it.Price.StringFixed(2))
	}
	if len(req.Outfit.Matched) > 0 {
		fmt.Fprintf(&b, "Stylist guidance matched: %s\n", strings.Join(req.Outfit.Matched, ", "))
	}

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(b.String()),
	}
}

func joinNonEmpty(values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && v != "unknown" {
			out = append(out, v)
		}
	}
	return strings.Join(out, " ")
}
