package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Query scopes shared by the repositories. Every query starts from
// ownedBy so a shop never reads another shop's rows.

func ownedBy(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

func ownedRow(tenantID, id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ? AND id = ?", tenantID, id)
	}
}

// page applies offset and limit when the filter asks for a page
func page(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Page <= 0 || filter.PageSize <= 0 {
			return db
		}
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}

// matching does a case-insensitive substring search over columns
func matching(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		cond := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			cond[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where(strings.Join(cond, " OR "), args...)
	}
}

// filtered applies conds[key] with the filter value for every filter
// key that has a condition. Unknown keys are ignored.
func filtered(filters map[string]any, conds map[string]string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range filters {
			if cond, ok := conds[key]; ok {
				db = db.Where(cond, value)
			}
		}
		return db
	}
}

// first loads one row into dest, reporting shared.ErrNotFound when absent
func first(db *gorm.DB, dest any) error {
	err := db.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// removed reports shared.ErrNotFound when a delete matched nothing
func removed(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func exists(db *gorm.DB) (bool, error) {
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
