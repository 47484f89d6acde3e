package styling

import (
	"context"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
)

// RuleReader is the read access the rules engine needs
type RuleReader interface {
	// FindActiveByIntent finds the active rules for an intent label
	FindActiveByIntent(ctx context.Context, tenantID uuid.UUID, intent string) ([]Rule, error)
}

// RuleRepository defines the interface for rule persistence
type RuleRepository interface {
	RuleReader

	// FindByIDForTenant finds a rule by ID within a shop
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Rule, error)

	// FindAllForTenant finds all rules for a shop.
	// Supported filter keys: "intent" and "active".
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Rule, error)

	// CountForTenant counts rules for a shop matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// HasAnyActive checks whether the shop has any active rule
	HasAnyActive(ctx context.Context, tenantID uuid.UUID) (bool, error)

	// ExistsByName checks if a rule name is taken within a shop
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *Rule) error

	// DeleteForTenant deletes a rule within a shop
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
