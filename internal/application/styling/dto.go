package styling

import (
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/shopspring/decimal"
)

// CreateRuleRequest represents a request to create a styling rule
type CreateRuleRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=100"`
	Intent      string                 `json:"intent" binding:"required,min=1,max=50"`
	Description string                 `json:"description" binding:"max=2000"`
	Constraints styling.ConstraintSpec `json:"constraints"`
	Priority    int                    `json:"priority" binding:"omitempty,min=1,max=10"`
	Active      *bool                  `json:"active"`
}

// UpdateRuleRequest represents a request to update a styling rule
type UpdateRuleRequest struct {
	Name        *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Intent      *string                 `json:"intent" binding:"omitempty,min=1,max=50"`
	Description *string                 `json:"description" binding:"omitempty,max=2000"`
	Constraints *styling.ConstraintSpec `json:"constraints"`
	Priority    *int                    `json:"priority" binding:"omitempty,min=1,max=10"`
}

// RuleListFilter represents filter options for the rule list
type RuleListFilter struct {
	Intent   string `form:"intent"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=priority name intent created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RuleResponse represents a styling rule in API responses
type RuleResponse struct {
	ID          uuid.UUID              `json:"id"`
	TenantID    uuid.UUID              `json:"tenant_id"`
	Name        string                 `json:"name"`
	Intent      string                 `json:"intent"`
	Description string                 `json:"description,omitempty"`
	Constraints styling.ConstraintSpec `json:"constraints"`
	Priority    int                    `json:"priority"`
	Active      bool                   `json:"active"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Version     int                    `json:"version"`
}

// ToRuleResponse converts a domain Rule to RuleResponse
func ToRuleResponse(rule *styling.Rule) RuleResponse {
	return RuleResponse{
		ID:          rule.ID,
		TenantID:    rule.TenantID,
		Name:        rule.Name,
		Intent:      rule.Intent,
		Description: rule.Description,
		Constraints: rule.Constraints,
		Priority:    rule.Priority,
		Active:      rule.Active,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
		Version:     rule.Version,
	}
}

// IntentInput carries the structured fields of a shopper intent
type IntentInput struct {
	Intent     string   `json:"intent" binding:"max=50"`
	Activity   string   `json:"activity" binding:"max=100"`
	Occasion   string   `json:"occasion" binding:"max=100"`
	BudgetMax  *float64 `json:"budget_max" binding:"omitempty,gt=0"`
	Objectives []string `json:"objectives" binding:"max=20"`
	Palette    []string `json:"palette" binding:"max=20"`
	Formality  string   `json:"formality" binding:"max=50"`
	Size       string   `json:"size" binding:"max=10"`
}

// ToDomain converts the input to a domain Intent
func (in IntentInput) ToDomain() styling.Intent {
	return styling.Intent{
		Intent:     in.Intent,
		Activity:   in.Activity,
		Occasion:   in.Occasion,
		BudgetMax:  in.BudgetMax,
		Objectives: in.Objectives,
		Palette:    in.Palette,
		Formality:  in.Formality,
		Size:       in.Size,
	}
}

// RecommendRequest represents a request for outfit recommendations.
// Structured intent fields override whatever the free-text query yields.
type RecommendRequest struct {
	IntentInput
	Query      string `json:"query" binding:"max=1000"`
	MaxOutfits *int   `json:"max_outfits" binding:"omitempty,min=0"`
	Persist    bool   `json:"persist"`
}

// OutfitItemResponse represents one item of an outfit in API responses
type OutfitItemResponse struct {
	ItemID   uuid.UUID       `json:"item_id"`
	SKU      string          `json:"sku"`
	Title    string          `json:"title"`
	Role     string          `json:"role"`
	Price    decimal.Decimal `json:"price"`
	Score    float64         `json:"score"`
	Color    string          `json:"color,omitempty"`
	Material string          `json:"material,omitempty"`
	ImageKey string          `json:"image_key,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
}

// OutfitResponse represents a recommended outfit in API responses
type OutfitResponse struct {
	ID                *uuid.UUID           `json:"id,omitempty"`
	Items             []OutfitItemResponse `json:"items"`
	Score             float64              `json:"score"`
	TotalPrice        decimal.Decimal      `json:"total_price"`
	Rationale         string               `json:"rationale"`
	RationaleFallback bool                 `json:"rationale_fallback"`
	Matched           []string             `json:"matched,omitempty"`
}

// RecommendResponse represents the result of a recommendation request
type RecommendResponse struct {
	Intent      styling.Intent   `json:"intent"`
	Outfits     []OutfitResponse `json:"outfits"`
	Cached      bool             `json:"cached"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ParseIntentRequest represents a request to parse free text into an intent
type ParseIntentRequest struct {
	Query string `json:"query" binding:"required,max=1000"`
}

// OutfitListFilter represents filter options for the saved outfit list
type OutfitListFilter struct {
	Intent   string `form:"intent"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// SavedOutfitResponse represents a persisted outfit in API responses
type SavedOutfitResponse struct {
	OutfitResponse
	Intent    string    `json:"intent"`
	Query     string    `json:"query,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOutfitResponse converts a domain Outfit to OutfitResponse without image URLs
func ToOutfitResponse(outfit styling.Outfit) OutfitResponse {
	items := make([]OutfitItemResponse, len(outfit.Items))
	for i, it := range outfit.Items {
		items[i] = OutfitItemResponse{
			ItemID:   it.ItemID,
			SKU:      it.SKU,
			Title:    it.Title,
			Role:     it.Role.String(),
			Price:    it.Price,
			Score:    it.Score,
			Color:    it.Color,
			Material: it.Material,
			ImageKey: it.ImageKey,
		}
	}
	return OutfitResponse{
		Items:             items,
		Score:             outfit.Score,
		TotalPrice:        outfit.TotalPrice(),
		Rationale:         outfit.Rationale,
		RationaleFallback: outfit.RationaleFallback,
		Matched:           outfit.Matched,
	}
}
