package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemBatchSize = 200

var itemConds = map[string]string{
	"category":  "attr_category = ?",
	"in_stock":  "in_stock = ?",
	"min_price": "price >= ?",
	"max_price": "price <= ?",
}

// GormItemRepository stores catalog items
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) items(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&catalog.Item{}).Scopes(ownedBy(tenantID))
}

func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := first(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySKU matches the SKU as stored, upper-cased
func (r *GormItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := first(r.items(ctx, tenantID).Where("sku = ?", normalizeSKU(sku)), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	q := itemFilter(r.items(ctx, tenantID), filter).Scopes(page(filter))
	if err := itemSort.apply(q, filter.OrderBy, filter.OrderDir).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindInStock returns the candidate pool in creation order, so equal
// scores later break ties the same way on every request.
func (r *GormItemRepository) FindInStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]catalog.Item, error) {
	var items []catalog.Item
	q := r.items(ctx, tenantID).Where("in_stock = ?", true).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveBatch upserts items in one transaction
func (r *GormItemRepository) SaveBatch(ctx context.Context, items []*catalog.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(items, itemBatchSize).Error
	})
}

func (r *GormItemRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return removed(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)).Delete(&catalog.Item{}))
}

func (r *GormItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var n int64
	err := itemFilter(r.items(ctx, tenantID), filter).Count(&n).Error
	return n, err
}

func (r *GormItemRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	return exists(r.items(ctx, tenantID).Where("sku = ?", normalizeSKU(sku)))
}

// CatalogVersion hashes the shop's item count, version sum and latest
// update time. Any create, update or delete changes at least one.
func (r *GormItemRepository) CatalogVersion(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var (
		count, versionSum int64
		lastUpdated       sql.NullString
	)
	row := r.items(ctx, tenantID).Select("COUNT(*), COALESCE(SUM(version), 0), MAX(updated_at)").Row()
	if err := row.Scan(&count, &versionSum, &lastUpdated); err != nil {
		return "", fmt.Errorf("read catalog version: %w", err)
	}

	h := xxhash.New()
	_, _ = h.WriteString(strconv.FormatInt(count, 10) + "|" + strconv.FormatInt(versionSum, 10) + "|" + lastUpdated.String)
	return strconv.FormatUint(h.Sum64(), 16), nil
}

func itemFilter(db *gorm.DB, filter shared.Filter) *gorm.DB {
	return db.Scopes(matching(filter.Search, "sku", "title"), filtered(filter.Filters, itemConds))
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)
