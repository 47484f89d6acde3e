// Package handler holds the gin handlers of the lookbook API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/infrastructure/logger"
	"github.com/lookbook/backend/internal/interfaces/http/dto"
	"github.com/lookbook/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

var errNoShop = errors.New("no shop on request")

// BaseHandler writes the JSON envelope for every API handler
type BaseHandler struct{}

// shopID returns the shop resolved by ShopContext, or parses the tenant
// header when the handler is mounted without that middleware.
func shopID(c *gin.Context) (uuid.UUID, error) {
	if id := middleware.GetShopID(c); id != uuid.Nil {
		return id, nil
	}
	if raw := c.GetHeader(middleware.TenantHeader); raw != "" {
		return uuid.Parse(raw)
	}
	return uuid.Nil, errNoShop
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta answers a list page with its pagination block
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope tagged with the request id
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind* call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps a domain error to its status and envelope code. Other
// errors are logged with the request and answered with a generic 500 so
// internals never reach the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		code := dto.NormalizeErrorCode(de.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, de.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// parseID reads a UUID path parameter; on failure the 400 is already sent
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// requireShop resolves the shop; on failure the 400 is already sent
func (h *BaseHandler) requireShop(c *gin.Context) (uuid.UUID, bool) {
	id, err := shopID(c)
	if err != nil || id == uuid.Nil {
		h.BadRequest(c, "Invalid shop ID")
		return uuid.Nil, false
	}
	return id, true
}
