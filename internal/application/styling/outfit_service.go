package styling

import (
	"context"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
)

// OutfitQueryService reads saved outfits
type OutfitQueryService struct {
	outfitRepo styling.OutfitRepository
	images     *catalogapp.ImageURLResolver
}

// NewOutfitQueryService creates a new OutfitQueryService
func NewOutfitQueryService(outfitRepo styling.OutfitRepository, images *catalogapp.ImageURLResolver) *OutfitQueryService {
	return &OutfitQueryService{outfitRepo: outfitRepo, images: images}
}

// GetByID retrieves a saved outfit by ID
func (s *OutfitQueryService) GetByID(ctx context.Context, tenantID, outfitID uuid.UUID) (*SavedOutfitResponse, error) {
	record, err := s.outfitRepo.FindByIDForTenant(ctx, tenantID, outfitID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, record)
	return &resp, nil
}

// List retrieves a page of saved outfits, newest first
func (s *OutfitQueryService) List(ctx context.Context, tenantID uuid.UUID, filter OutfitListFilter) ([]SavedOutfitResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if label := strings.ToLower(strings.TrimSpace(filter.Intent)); label != "" {
		domainFilter.Filters["intent"] = label
	}

	records, err := s.outfitRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.outfitRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SavedOutfitResponse, len(records))
	for i := range records {
		responses[i] = s.toResponse(ctx, &records[i])
	}
	return responses, total, nil
}

func (s *OutfitQueryService) toResponse(ctx context.Context, record *styling.OutfitRecord) SavedOutfitResponse {
	outfit := ToOutfitResponse(record.Outfit())
	id := record.ID
	outfit.ID = &id
	for i := range outfit.Items {
		outfit.Items[i].ImageURL = s.images.Resolve(ctx, outfit.Items[i].ImageKey)
	}
	return SavedOutfitResponse{
		OutfitResponse: outfit,
		Intent:         record.Intent,
		Query:          record.Query,
		CreatedAt:      record.CreatedAt,
	}
}
