package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"gorm.io/gorm"
)

var outfitConds = map[string]string{"intent": "intent = ?"}

// GormOutfitRepository stores saved outfit recommendations
type GormOutfitRepository struct {
	db *gorm.DB
}

func NewGormOutfitRepository(db *gorm.DB) *GormOutfitRepository {
	return &GormOutfitRepository{db: db}
}

func (r *GormOutfitRepository) outfits(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&styling.OutfitRecord{}).
		Scopes(ownedBy(tenantID), filtered(filter.Filters, outfitConds))
}

func (r *GormOutfitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*styling.OutfitRecord, error) {
	var record styling.OutfitRecord
	if err := first(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormOutfitRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]styling.OutfitRecord, error) {
	var records []styling.OutfitRecord
	q := r.outfits(ctx, tenantID, filter).Scopes(page(filter))
	if err := outfitSort.apply(q, filter.OrderBy, filter.OrderDir).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *GormOutfitRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var n int64
	err := r.outfits(ctx, tenantID, filter).Count(&n).Error
	return n, err
}

// SaveBatch inserts outfits in one transaction; a failed insert stores none
func (r *GormOutfitRepository) SaveBatch(ctx context.Context, outfits []*styling.OutfitRecord) error {
	if len(outfits) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range outfits {
			if err := tx.Create(o).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOutfitRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return removed(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)).Delete(&styling.OutfitRecord{}))
}

var _ styling.OutfitRepository = (*GormOutfitRepository)(nil)
