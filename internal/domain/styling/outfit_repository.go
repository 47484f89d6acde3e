package styling

import (
	"context"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
)

// OutfitRepository defines the interface for saved outfit persistence
type OutfitRepository interface {
	// FindByIDForTenant finds a saved outfit by ID within a shop
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*OutfitRecord, error)

	// FindAllForTenant finds saved outfits for a shop, newest first.
	// Supported filter keys: "intent".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]OutfitRecord, error)

	// CountForTenant counts saved outfits for a shop matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// SaveBatch stores multiple outfits in one transaction
	SaveBatch(ctx context.Context, outfits []*OutfitRecord) error

	// DeleteForTenant deletes a saved outfit within a shop
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
