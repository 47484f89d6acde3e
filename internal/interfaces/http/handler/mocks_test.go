package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	catalogapp "github.com/lookbook/backend/internal/application/catalog"
	stylingapp "github.com/lookbook/backend/internal/application/styling"
	"github.com/lookbook/backend/internal/domain/styling"
	"github.com/stretchr/testify/mock"
)

type mockItemService struct {
	mock.Mock
}

func (m *mockItemService) Create(ctx context.Context, shopID uuid.UUID, req catalogapp.CreateItemRequest) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, shopID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *mockItemService) GetByID(ctx context.Context, shopID, itemID uuid.UUID) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, shopID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *mockItemService) List(ctx context.Context, shopID uuid.UUID, filter catalogapp.ItemListFilter) ([]catalogapp.ItemResponse, int64, error) {
	args := m.Called(ctx, shopID, filter)
	return args.Get(0).([]catalogapp.ItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockItemService) Update(ctx context.Context, shopID, itemID uuid.UUID, req catalogapp.UpdateItemRequest) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, shopID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *mockItemService) UpdateStock(ctx context.Context, shopID, itemID uuid.UUID, inStock bool) (*catalogapp.ItemResponse, error) {
	args := m.Called(ctx, shopID, itemID, inStock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ItemResponse), args.Error(1)
}

func (m *mockItemService) Delete(ctx context.Context, shopID, itemID uuid.UUID) error {
	return m.Called(ctx, shopID, itemID).Error(0)
}

func (m *mockItemService) CreateImageUploadURL(ctx context.Context, shopID, itemID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error) {
	args := m.Called(ctx, shopID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImageUploadResponse), args.Error(1)
}

func (m *mockItemService) ImportCSV(ctx context.Context, shopID uuid.UUID, r io.Reader, opts catalogapp.ImportOptions) (*catalogapp.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, shopID, string(body), opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImportResult), args.Error(1)
}

type mockRuleService struct {
	mock.Mock
}

func (m *mockRuleService) Create(ctx context.Context, shopID uuid.UUID, req stylingapp.CreateRuleRequest) (*stylingapp.RuleResponse, error) {
	args := m.Called(ctx, shopID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RuleResponse), args.Error(1)
}

func (m *mockRuleService) GetByID(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error) {
	args := m.Called(ctx, shopID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RuleResponse), args.Error(1)
}

func (m *mockRuleService) List(ctx context.Context, shopID uuid.UUID, filter stylingapp.RuleListFilter) ([]stylingapp.RuleResponse, int64, error) {
	args := m.Called(ctx, shopID, filter)
	return args.Get(0).([]stylingapp.RuleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockRuleService) Update(ctx context.Context, shopID, ruleID uuid.UUID, req stylingapp.UpdateRuleRequest) (*stylingapp.RuleResponse, error) {
	args := m.Called(ctx, shopID, ruleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RuleResponse), args.Error(1)
}

func (m *mockRuleService) Activate(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error) {
	args := m.Called(ctx, shopID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RuleResponse), args.Error(1)
}

func (m *mockRuleService) Deactivate(ctx context.Context, shopID, ruleID uuid.UUID) (*stylingapp.RuleResponse, error) {
	args := m.Called(ctx, shopID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RuleResponse), args.Error(1)
}

func (m *mockRuleService) Delete(ctx context.Context, shopID, ruleID uuid.UUID) error {
	return m.Called(ctx, shopID, ruleID).Error(0)
}

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) ParseIntent(query string) styling.Intent {
	return m.Called(query).Get(0).(styling.Intent)
}

func (m *mockRecommender) Recommend(ctx context.Context, shopID uuid.UUID, req stylingapp.RecommendRequest) (*stylingapp.RecommendResponse, error) {
	args := m.Called(ctx, shopID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.RecommendResponse), args.Error(1)
}

type mockOutfitQueries struct {
	mock.Mock
}

func (m *mockOutfitQueries) GetByID(ctx context.Context, shopID, outfitID uuid.UUID) (*stylingapp.SavedOutfitResponse, error) {
	args := m.Called(ctx, shopID, outfitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stylingapp.SavedOutfitResponse), args.Error(1)
}

func (m *mockOutfitQueries) List(ctx context.Context, shopID uuid.UUID, filter stylingapp.OutfitListFilter) ([]stylingapp.SavedOutfitResponse, int64, error) {
	args := m.Called(ctx, shopID, filter)
	return args.Get(0).([]stylingapp.SavedOutfitResponse), args.Get(1).(int64), args.Error(2)
}
