package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"gorm.io/gorm"
)

var ruleConds = map[string]string{
	"intent": "intent = ?",
	"active": "active = ?",
}

// GormRuleRepository stores styling rules
type GormRuleRepository struct {
	db *gorm.DB
}

func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

func (r *GormRuleRepository) rules(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&styling.Rule{}).Scopes(ownedBy(tenantID))
}

// FindActiveByIntent returns the active rules for an intent label,
// highest priority first and in creation order within a priority.
func (r *GormRuleRepository) FindActiveByIntent(ctx context.Context, tenantID uuid.UUID, intent string) ([]styling.Rule, error) {
	var rules []styling.Rule
	err := r.rules(ctx, tenantID).
		Where("intent = ? AND active = ?", strings.ToLower(strings.TrimSpace(intent)), true).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *GormRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*styling.Rule, error) {
	var rule styling.Rule
	if err := first(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)), &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *GormRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]styling.Rule, error) {
	var rules []styling.Rule
	q := ruleFilter(r.rules(ctx, tenantID), filter).Scopes(page(filter))
	if err := ruleSort.apply(q, filter.OrderBy, filter.OrderDir).Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *GormRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var n int64
	err := ruleFilter(r.rules(ctx, tenantID), filter).Count(&n).Error
	return n, err
}

func (r *GormRuleRepository) HasAnyActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	return exists(r.rules(ctx, tenantID).Where("active = ?", true))
}

func (r *GormRuleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	return exists(r.rules(ctx, tenantID).Where("name = ?", strings.TrimSpace(name)))
}

func (r *GormRuleRepository) Save(ctx context.Context, rule *styling.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *GormRuleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return removed(r.db.WithContext(ctx).Scopes(ownedRow(tenantID, id)).Delete(&styling.Rule{}))
}

func ruleFilter(db *gorm.DB, filter shared.Filter) *gorm.DB {
	return db.Scopes(matching(filter.Search, "name", "description"), filtered(filter.Filters, ruleConds))
}

var _ styling.RuleRepository = (*GormRuleRepository)(nil)
