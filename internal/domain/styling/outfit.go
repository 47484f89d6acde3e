package styling

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MinOutfitSlots is the fewest category slots a valid outfit fills
const MinOutfitSlots = 2

// OutfitItem is one item placed in an outfit slot
type OutfitItem struct {
	ItemID   uuid.UUID        `json:"item_id"`
	SKU      string           `json:"sku"`
	Title    string           `json:"title"`
	Role     catalog.Category `json:"role"`
	Price    decimal.Decimal  `json:"price"`
	Score    float64          `json:"score"`
	ImageKey string           `json:"image_key,omitempty"`
	Color    string           `json:"color,omitempty"`
	Material string           `json:"material,omitempty"`
}

// Outfit is a recommended combination of items.
// Items are ordered by slot and no two items share a role.
type Outfit struct {
	Items             []OutfitItem `json:"items"`
	Score             float64      `json:"score"`
	Rationale         string       `json:"rationale"`
	RationaleFallback bool         `json:"rationale_fallback"`
	Matched           []string     `json:"matched,omitempty"`
}

// TotalPrice returns the sum of item prices
func (o Outfit) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price)
	}
	return total
}

// Roles returns the filled slots in order
func (o Outfit) Roles() []catalog.Category {
	roles := make([]catalog.Category, len(o.Items))
	for i, it := range o.Items {
		roles[i] = it.Role
	}
	return roles
}

// ItemIDs returns the IDs of the outfit's items in order
func (o Outfit) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i, it := range o.Items {
		ids[i] = it.ItemID
	}
	return ids
}

// Validate checks the slot invariants of the outfit
func (o Outfit) Validate() error {
	if len(o.Items) < MinOutfitSlots {
		return shared.NewDomainError("INVALID_OUTFIT", "Outfit must fill at least two category slots")
	}
	seen := make(map[catalog.Category]struct{}, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.Role]; ok {
			return shared.NewDomainError("INVALID_OUTFIT", fmt.Sprintf("Outfit has more than one %s", it.Role))
		}
		seen[it.Role] = struct{}{}
	}
	return nil
}

// OutfitItems is the stored form of an outfit's item list
type OutfitItems []OutfitItem

// Value implements driver.Valuer
func (items OutfitItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (items *OutfitItems) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*items = OutfitItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into OutfitItems", value)
	}
	if len(raw) == 0 {
		*items = OutfitItems{}
		return nil
	}
	var decoded []OutfitItem
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to decode outfit items: %w", err)
	}
	*items = decoded
	return nil
}

// OutfitRecord is a recommended outfit saved for a shop
type OutfitRecord struct {
	shared.TenantAggregateRoot
	Intent            string          `gorm:"type:varchar(50);not null;index"`
	Query             string          `gorm:"type:text"`
	Score             float64         `gorm:"not null;default:0"`
	Rationale         string          `gorm:"type:text;not null"`
	RationaleFallback bool            `gorm:"not null;default:false"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Items             OutfitItems     `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (OutfitRecord) TableName() string {
	return "outfits"
}

// NewOutfitRecord creates a record of a recommended outfit
func NewOutfitRecord(tenantID uuid.UUID, intent Intent, query string, outfit Outfit) (*OutfitRecord, error) {
	if err := outfit.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(outfit.Rationale) == "" {
		return nil, shared.NewDomainError("INVALID_OUTFIT", "Outfit rationale cannot be empty")
	}

	return &OutfitRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Intent:              intent.Label(),
		Query:               query,
		Score:               outfit.Score,
		Rationale:           outfit.Rationale,
		RationaleFallback:   outfit.RationaleFallback,
		TotalPrice:          outfit.TotalPrice(),
		Items:               append(OutfitItems(nil), outfit.Items...),
	}, nil
}

// Outfit returns the record as an outfit value
func (r *OutfitRecord) Outfit() Outfit {
	return Outfit{
		Items:             append([]OutfitItem(nil), r.Items...),
		Score:             r.Score,
		Rationale:         r.Rationale,
		RationaleFallback: r.RationaleFallback,
	}
}
