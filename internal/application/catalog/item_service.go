package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemServiceConfig holds configuration for the item service
type ItemServiceConfig struct {
	// UploadURLExpiry is the duration for which image upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which image download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxImportRows caps the data rows accepted by one CSV import
	MaxImportRows int
}

// DefaultItemServiceConfig returns the default configuration
func DefaultItemServiceConfig() ItemServiceConfig {
	return ItemServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
		MaxImportRows:     5000,
	}
}

// ItemService handles catalog item operations
type ItemService struct {
	itemRepo catalog.ItemRepository
	storage  ObjectStorageService
	images   *ImageURLResolver
	config   ItemServiceConfig
	logger   *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo catalog.ItemRepository,
	storage ObjectStorageService,
	config ItemServiceConfig,
	logger *zap.Logger,
) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		itemRepo: itemRepo,
		storage:  storage,
		images:   NewImageURLResolver(storage, config.DownloadURLExpiry),
		config:   config,
		logger:   logger,
	}
}

// Create creates a new catalog item
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	exists, err := s.itemRepo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Item with this SKU already exists")
	}

	item, err := catalog.NewItem(tenantID, req.SKU, req.Title, req.Price)
	if err != nil {
		return nil, err
	}

	if len(req.Sizes) > 0 {
		sizes, err := catalog.NewSizeSet(req.Sizes...)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_SIZE", err.Error())
		}
		item.SetSizes(sizes)
	}
	if req.ImageKey != "" {
		if err := item.SetImageKey(req.ImageKey); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		item.SetAttributes(req.Attributes.ToDomain())
	}
	if req.InStock != nil {
		item.SetStock(*req.InStock)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, item), nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, item), nil
}

// GetBySKU retrieves an item by SKU
func (s *ItemService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, item), nil
}

// List retrieves a page of items with filtering
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = catalog.ParseCategory(filter.Category)
	}
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}

	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.itemRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = *s.toResponse(ctx, &items[i])
	}
	return responses, total, nil
}

// Update updates an item
func (s *ItemService) Update(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := item.Update(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := item.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Sizes != nil {
		sizes, err := catalog.NewSizeSet(*req.Sizes...)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_SIZE", err.Error())
		}
		item.SetSizes(sizes)
	}
	if req.ImageKey != nil {
		if err := item.SetImageKey(*req.ImageKey); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		item.SetAttributes(req.Attributes.ToDomain())
	}
	if req.InStock != nil {
		item.SetStock(*req.InStock)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, item), nil
}

// UpdateStock marks an item as in or out of stock
func (s *ItemService) UpdateStock(ctx context.Context, tenantID, itemID uuid.UUID, inStock bool) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	item.SetStock(inStock)
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, item), nil
}

// Delete deletes an item
func (s *ItemService) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	if err := s.itemRepo.DeleteForTenant(ctx, tenantID, itemID); err != nil {
		return err
	}

	// the row is gone; a leftover image object is only wasted space
	if s.storage != nil && item.HasImage() {
		if err := s.storage.DeleteObject(ctx, item.ImageKey); err != nil {
			s.logger.Warn("Failed to delete item image",
				zap.String("item_id", itemID.String()),
				zap.String("image_key", item.ImageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// CreateImageUploadURL reserves an image key for the item and returns a
// presigned upload URL for it
func (s *ItemService) CreateImageUploadURL(ctx context.Context, tenantID, itemID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Object storage is not configured")
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if _, ok := AllowedImageContentTypes[contentType]; !ok {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: JPEG, PNG, GIF and WebP images.", req.ContentType))
	}

	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	key := imageStorageKey(tenantID, itemID, req.FileName, contentType)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate image upload URL",
			zap.String("item_id", itemID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	if err := item.SetImageKey(key); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	return &ImageUploadResponse{
		ItemID:    itemID,
		ImageKey:  key,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ImageURL resolves an image key to a download URL
func (s *ItemService) ImageURL(ctx context.Context, key string) string {
	return s.images.Resolve(ctx, key)
}

func (s *ItemService) toResponse(ctx context.Context, item *catalog.Item) *ItemResponse {
	resp := ToItemResponse(item)
	resp.ImageURL = s.images.Resolve(ctx, item.ImageKey)
	return &resp
}
