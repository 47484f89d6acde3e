package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// AttributesInput carries vision attributes in requests
type AttributesInput struct {
	Category string `json:"category" binding:"max=50"`
	Color    string `json:"color" binding:"max=50"`
	Material string `json:"material" binding:"max=50"`
	Pattern  string `json:"pattern" binding:"max=50"`
	Occasion string `json:"occasion" binding:"max=50"`
	Fit      string `json:"fit" binding:"max=50"`
	PlusSize bool   `json:"plus_size"`
}

// ToDomain converts the input to normalized vision attributes
func (a AttributesInput) ToDomain() catalog.VisionAttributes {
	return catalog.VisionAttributes{
		Category: catalog.Category(a.Category),
		Color:    a.Color,
		Material: a.Material,
		Pattern:  a.Pattern,
		Occasion: a.Occasion,
		Fit:      a.Fit,
		PlusSize: a.PlusSize,
	}.Normalize()
}

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	SKU        string           `json:"sku" binding:"required,min=1,max=64"`
	Title      string           `json:"title" binding:"required,min=1,max=200"`
	Price      decimal.Decimal  `json:"price"`
	Sizes      []string         `json:"sizes"`
	ImageKey   string           `json:"image_key" binding:"max=500"`
	Attributes *AttributesInput `json:"attributes"`
	InStock    *bool            `json:"in_stock"`
}

// UpdateItemRequest represents a request to update a catalog item
type UpdateItemRequest struct {
	Title      *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Price      *decimal.Decimal `json:"price"`
	Sizes      *[]string        `json:"sizes"`
	ImageKey   *string          `json:"image_key" binding:"omitempty,max=500"`
	Attributes *AttributesInput `json:"attributes"`
	InStock    *bool            `json:"in_stock"`
}

// UpdateStockRequest represents a request to change stock availability
type UpdateStockRequest struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

// ImageUploadRequest represents a request for an image upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	FileName    string `json:"file_name" binding:"max=255"`
}

// ImageUploadResponse carries a presigned image upload URL
type ImageUploadResponse struct {
	ItemID    uuid.UUID `json:"item_id"`
	ImageKey  string    `json:"image_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ItemListFilter represents filter options for item lists
type ItemListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	InStock  *bool  `form:"in_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at sku title price"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AttributesResponse represents vision attributes in API responses
type AttributesResponse struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Material string `json:"material"`
	Pattern  string `json:"pattern"`
	Occasion string `json:"occasion"`
	Fit      string `json:"fit"`
	PlusSize bool   `json:"plus_size"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID         uuid.UUID          `json:"id"`
	TenantID   uuid.UUID          `json:"tenant_id"`
	SKU        string             `json:"sku"`
	Title      string             `json:"title"`
	Price      decimal.Decimal    `json:"price"`
	Sizes      []string           `json:"sizes"`
	ImageKey   string             `json:"image_key,omitempty"`
	ImageURL   string             `json:"image_url,omitempty"`
	Attributes AttributesResponse `json:"attributes"`
	InStock    bool               `json:"in_stock"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Version    int                `json:"version"`
}

// ToItemResponse converts a domain Item to ItemResponse
func ToItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:       item.ID,
		TenantID: item.TenantID,
		SKU:      item.SKU,
		Title:    item.Title,
		Price:    item.Price,
		Sizes:    item.Sizes.Strings(),
		ImageKey: item.ImageKey,
		Attributes: AttributesResponse{
			Category: item.Attributes.Category.String(),
			Color:    item.Attributes.Color,
			Material: item.Attributes.Material,
			Pattern:  item.Attributes.Pattern,
			Occasion: item.Attributes.Occasion,
			Fit:      item.Attributes.Fit,
			PlusSize: item.Attributes.PlusSize,
		},
		InStock:   item.InStock,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
		Version:   item.Version,
	}
}

// ImportOptions controls CSV catalog imports
type ImportOptions struct {
	// UpdateExisting updates items whose SKU already exists instead of skipping them
	UpdateExisting bool
}

// ImportResult represents the result of a CSV catalog import
type ImportResult struct {
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	UpdatedRows  int        `json:"updated_rows"`
	SkippedRows  int        `json:"skipped_rows"`
	ErrorRows    int        `json:"error_rows"`
	Errors       []RowError `json:"errors,omitempty"`
	IsTruncated  bool       `json:"is_truncated,omitempty"`
	TotalErrors  int        `json:"total_errors,omitempty"`
}
