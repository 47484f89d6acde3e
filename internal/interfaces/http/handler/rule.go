package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stylingapp "github.com/lookbook/backend/internal/application/styling"
)

// RuleService is the styling-rule use-case surface the rule handler drives
type RuleService interface {
	Create(ctx context.Context, shopID uuid.UUID, req stylingapp.CreateRuleRequest) (*stylingapp.RuleResponse, error)
	GetByID(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error)
	List(ctx context.Context, shopID uuid.UUID, filter stylingapp.RuleListFilter) ([]stylingapp.RuleResponse, int64, error)
	Update(ctx context.Context, shopID, ruleID uuid.UUID, req stylingapp.UpdateRuleRequest) (*stylingapp.RuleResponse, error)
	Activate(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error)
	Deactivate(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error)
	Delete(ctx context.Context, shopID, ruleID uuid.UUID) error
}

// RuleHandler handles styling rule endpoints
type RuleHandler struct {
	BaseHandler
	rules RuleService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(rules RuleService) *RuleHandler {
	return &RuleHandler{rules: rules}
}

// Create handles POST /styling/rules
func (h *RuleHandler) Create(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var req stylingapp.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), shop, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// GetByID handles GET /styling/rules/:id
func (h *RuleHandler) GetByID(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	rule, err := h.rules.GetByID(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// List handles GET /styling/rules
func (h *RuleHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var filter stylingapp.RuleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rules, total, err := h.rules.List(c.Request.Context(), shop, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rules, total, filter.Page, filter.PageSize)
}

// Update handles PUT /styling/rules/:id
func (h *RuleHandler) Update(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req stylingapp.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rule, err := h.rules.Update(c.Request.Context(), shop, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Activate handles POST /styling/rules/:id/activate
func (h *RuleHandler) Activate(c *gin.Context) {
	h.toggle(c, h.rules.Activate)
}

// Deactivate handles POST /styling/rules/:id/deactivate
func (h *RuleHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.rules.Deactivate)
}

// Delete handles DELETE /styling/rules/:id
func (h *RuleHandler) Delete(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.rules.Delete(c.Request.Context(), shop, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *RuleHandler) toggle(c *gin.Context, apply func(context.Context, uuid.UUID, uuid.UUID) (*stylingapp.RuleResponse, error)) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	rule, err := apply(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}
