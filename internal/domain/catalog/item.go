package catalog

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)

// Item is a sellable product in a shop's catalog.
// It is the aggregate root for catalog operations and the unit the
// recommender composes outfits from.
type Item struct {
	shared.TenantAggregateRoot
	SKU        string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_item_tenant_sku,priority:2"`
	Title      string           `gorm:"type:varchar(200);not null"`
	Price      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Sizes      SizeSet          `gorm:"type:text;not null;default:'[]'"`
	ImageKey   string           `gorm:"type:varchar(500)"`
	Attributes VisionAttributes `gorm:"embedded;embeddedPrefix:attr_"`
	InStock    bool             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item
func NewItem(tenantID uuid.UUID, sku, title string, price decimal.Decimal) (*Item, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(strings.TrimSpace(sku)),
		Title:               strings.TrimSpace(title),
		Price:               price,
		Sizes:               SizeSet{},
		Attributes:          UnknownAttributes(),
		InStock:             true,
	}, nil
}

// Update updates the item's title
func (i *Item) Update(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}

	i.Title = strings.TrimSpace(title)
	i.Touch()

	return nil
}

// SetPrice sets the item price
func (i *Item) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}

	i.Price = price
	i.Touch()

	return nil
}

// SetSizes replaces the available size range
func (i *Item) SetSizes(sizes SizeSet) {
	i.Sizes = SizeSetOf(sizes...)
	i.Touch()
}

// SetAttributes replaces the vision attributes.
// Values are normalized so missing descriptors read as unknown.
func (i *Item) SetAttributes(attrs VisionAttributes) {
	i.Attributes = attrs.Normalize()
	i.Touch()
}

// SetImageKey sets the object storage key of the item image
func (i *Item) SetImageKey(key string) error {
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_KEY", "Image key cannot exceed 500 characters")
	}

	i.ImageKey = strings.TrimSpace(key)
	i.Touch()

	return nil
}

// SetStock marks the item as in or out of stock
func (i *Item) SetStock(inStock bool) {
	if i.InStock == inStock {
		return
	}
	i.InStock = inStock
	i.Touch()
}

// HasSize returns true if the item is stocked in the given size
func (i *Item) HasSize(size Size) bool {
	return i.Sizes.Contains(size)
}

// Category returns the item's canonical category, parsing the stored
// value so items built without SetAttributes still bucket correctly
func (i *Item) Category() Category {
	return ParseCategory(string(i.Attributes.Category))
}

// PriceFloat returns the price as a float for scoring
func (i *Item) PriceFloat() float64 {
	f, _ := i.Price.Float64()
	return f
}

// HasImage returns true if an image has been uploaded for the item
func (i *Item) HasImage() bool {
	return i.ImageKey != ""
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	if !skuPattern.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, hyphens and dots")
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
