package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByIDForTenant finds an item by ID within a shop
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)

	// FindBySKU finds an item by its SKU within a shop
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Item, error)

	// FindAllForTenant finds all items for a shop.
	// Supported filter keys: "category" and "in_stock".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)

	// FindInStock returns the shop's in-stock items ordered by creation time then ID.
	// The order is stable so recommendation tie-breaks are reproducible.
	FindInStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// SaveBatch creates or updates multiple items
	SaveBatch(ctx context.Context, items []*Item) error

	// DeleteForTenant deletes an item within a shop
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts items for a shop matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsBySKU checks if an item with the given SKU exists in a shop
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)

	// CatalogVersion returns a token that changes whenever the shop's catalog changes
	CatalogVersion(ctx context.Context, tenantID uuid.UUID) (string, error)
}
