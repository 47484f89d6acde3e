package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stylingapp "github.com/lookbook/backend/internal/application/styling"
	"github.com/lookbook/backend/internal/domain/styling"
)

// Recommender produces outfit recommendations for a shop
type Recommender interface {
	ParseIntent(query string) styling.Intent
	Recommend(ctx context.Context, shopID uuid.UUID, req stylingapp.RecommendRequest) (*stylingapp.RecommendResponse, error)
}

// OutfitQueries reads persisted outfits
type OutfitQueries interface {
	GetByID(ctx context.Context, shopID, outfitID uuid.UUID) (*stylingapp.SavedOutfitResponse, error)
	List(ctx context.Context, shopID uuid.UUID, filter stylingapp.OutfitListFilter) ([]stylingapp.SavedOutfitResponse, int64, error)
}

// RecommendationHandler handles recommendation, intent and saved-outfit endpoints
type RecommendationHandler struct {
	BaseHandler
	recommender Recommender
	outfits     OutfitQueries
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(recommender Recommender, outfits OutfitQueries) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender, outfits: outfits}
}

// Recommend handles POST /styling/recommendations.
// An empty outfit list is a successful answer, not an error.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var req stylingapp.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.recommender.Recommend(c.Request.Context(), shop, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ParseIntent handles POST /styling/intents/parse
func (h *RecommendationHandler) ParseIntent(c *gin.Context) {
	var req stylingapp.ParseIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.Success(c, h.recommender.ParseIntent(req.Query))
}

// GetOutfit handles GET /styling/outfits/:id
func (h *RecommendationHandler) GetOutfit(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	outfit, err := h.outfits.GetByID(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outfit)
}

// ListOutfits handles GET /styling/outfits
func (h *RecommendationHandler) ListOutfits(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var filter stylingapp.OutfitListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	outfits, total, err := h.outfits.List(c.Request.Context(), shop, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, outfits, total, filter.Page, filter.PageSize)
}
