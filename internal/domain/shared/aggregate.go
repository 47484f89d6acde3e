package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregateRoot is embedded by every persisted aggregate. TenantID
// is the owning shop; catalog items, styling rules and stored outfits
// never cross shops. Version is the optimistic lock checked on save.
type TenantAggregateRoot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now()
	return TenantAggregateRoot{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

func (a *TenantAggregateRoot) GetVersion() int { return a.Version }

// Touch records a mutation
func (a *TenantAggregateRoot) Touch() {
	a.UpdatedAt = time.Now()
	a.Version++
}
