package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	"github.com/lookbook/backend/internal/interfaces/http/dto"
)

// ItemService is the catalog use-case surface the item handler drives
type ItemService interface {
	Create(ctx context.Context, shopID uuid.UUID, req catalogapp.CreateItemRequest) (*catalogapp.ItemResponse, error)
	GetByID(ctx context.Context, shopID, itemID uuid.UUID) (*catalogapp.ItemResponse, error)
	List(ctx context.Context, shopID uuid.UUID, filter catalogapp.ItemListFilter) ([]catalogapp.ItemResponse, int64, error)
	Update(ctx context.Context, shopID, itemID uuid.UUID, req catalogapp.UpdateItemRequest) (*catalogapp.ItemResponse, error)
	UpdateStock(ctx context.Context, shopID, itemID uuid.UUID, inStock bool) (*catalogapp.ItemResponse, error)
	Delete(ctx context.Context, shopID, itemID uuid.UUID) error
	CreateImageUploadURL(ctx context.Context, shopID, itemID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
	ImportCSV(ctx context.Context, shopID uuid.UUID, r io.Reader, opts catalogapp.ImportOptions) (*catalogapp.ImportResult, error)
}

// DefaultMaxImportSize bounds uploaded catalog feeds when no limit is configured
const DefaultMaxImportSize int64 = 10 << 20

// ItemHandler handles catalog item endpoints
type ItemHandler struct {
	BaseHandler
	items         ItemService
	maxImportSize int64
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items ItemService, maxImportSize int64) *ItemHandler {
	if maxImportSize <= 0 {
		maxImportSize = DefaultMaxImportSize
	}
	return &ItemHandler{items: items, maxImportSize: maxImportSize}
}

// Create handles POST /catalog/items
func (h *ItemHandler) Create(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.items.Create(c.Request.Context(), shop, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetByID handles GET /catalog/items/:id
func (h *ItemHandler) GetByID(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.items.GetByID(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// List handles GET /catalog/items
func (h *ItemHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var filter catalogapp.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.items.List(c.Request.Context(), shop, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Update handles PUT /catalog/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.items.Update(c.Request.Context(), shop, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateStock handles PATCH /catalog/items/:id/stock
func (h *ItemHandler) UpdateStock(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.items.UpdateStock(c.Request.Context(), shop, id, *req.InStock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /catalog/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), shop, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateImageUploadURL handles POST /catalog/items/:id/image-upload-url
func (h *ItemHandler) CreateImageUploadURL(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	upload, err := h.items.CreateImageUploadURL(c.Request.Context(), shop, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// Import handles POST /catalog/items/import with a multipart "file" CSV part.
// Set update_existing=true to update items whose SKU already exists.
func (h *ItemHandler) Import(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}
	var opts dto.ImportRequest
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' form field")
		return
	}
	if header.Size > h.maxImportSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Import file is too large")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		h.BadRequest(c, "Only .csv files can be imported")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.items.ImportCSV(c.Request.Context(), shop, file, catalogapp.ImportOptions{
		UpdateExisting: opts.UpdateExisting,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
