package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/infrastructure/logger"
	"github.com/lookbook/backend/internal/interfaces/http/dto"
)

// ShopConfig holds configuration for shop (tenant) resolution
type ShopConfig struct {
	// DefaultShopID is used when the request carries no X-Tenant-ID header.
	// uuid.Nil makes the header mandatory.
	DefaultShopID uuid.UUID
	// SkipPaths are paths that don't need a shop, such as health checks
	SkipPaths []string
}

// DefaultShopConfig returns the single-shop development configuration
func DefaultShopConfig(defaultShop uuid.UUID) ShopConfig {
	return ShopConfig{
		DefaultShopID: defaultShop,
		SkipPaths:     []string{"/health", "/api/v1/system"},
	}
}

// ShopContext resolves the shop from X-Tenant-ID and stores it on the gin
// and request contexts. Malformed IDs are rejected with 400.
func ShopContext(cfg ShopConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		shopID := cfg.DefaultShopID
		if header := strings.TrimSpace(c.GetHeader(TenantHeader)); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil || parsed == uuid.Nil {
				abortBadShop(c, "Invalid X-Tenant-ID header")
				return
			}
			shopID = parsed
		}
		if shopID == uuid.Nil {
			abortBadShop(c, "X-Tenant-ID header is required")
			return
		}

		c.Set(logger.GinTenantIDKey, shopID.String())
		c.Request = c.Request.WithContext(logger.WithShopID(c.Request.Context(), shopID.String()))
		c.Next()
	}
}

func abortBadShop(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, message, GetRequestID(c),
	))
}

// GetShopID returns the shop resolved by ShopContext, or uuid.Nil
func GetShopID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(logger.GinTenantIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}
