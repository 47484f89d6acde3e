package persistence

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortSpec whitelists the sortable columns of one table. Keys are the
// names accepted from list requests; unknown names use the fallback column.
type sortSpec struct {
	columns  map[string]string
	fallback string
	tieBreak string
}

var (
	itemSort = sortSpec{
		columns: map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"sku":        "sku",
			"title":      "title",
			"price":      "price",
			"in_stock":   "in_stock",
			"category":   "attr_category",
		},
		fallback: "created_at",
		tieBreak: "id",
	}
	ruleSort = sortSpec{
		columns: map[string]string{
			"created_at": "created_at",
			"updated_at": "updated_at",
			"name":       "name",
			"intent":     "intent",
			"priority":   "priority",
			"active":     "active",
		},
		fallback: "priority",
		tieBreak: "name",
	}
	outfitSort = sortSpec{
		columns: map[string]string{
			"created_at":  "created_at",
			"intent":      "intent",
			"score":       "score",
			"total_price": "total_price",
		},
		fallback: "created_at",
		tieBreak: "id",
	}
)

func (s sortSpec) column(orderBy string) string {
	if col, ok := s.columns[strings.ToLower(strings.TrimSpace(orderBy))]; ok {
		return col
	}
	return s.fallback
}

// descending is true unless the direction is asc
func descending(orderDir string) bool {
	return !strings.EqualFold(strings.TrimSpace(orderDir), "asc")
}

// apply orders the query by the requested column, then by the tie-break
// column ascending so pages are stable
func (s sortSpec) apply(query *gorm.DB, orderBy, orderDir string) *gorm.DB {
	return query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.column(orderBy)}, Desc: descending(orderDir)}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.tieBreak}})
}
