package styling

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
	"github.com/lookbook/backend/internal/domain/styling"
	"go.uber.org/zap"
)

// defaultRulePriority is used when a create request omits the priority
const defaultRulePriority = 5

// RuleService handles styling rule management
type RuleService struct {
	ruleRepo styling.RuleRepository
	cache    RecommendationCache
	logger   *zap.Logger
}

// NewRuleService creates a new RuleService.
// The cache is optional; when set, rule changes drop the shop's cached recommendations.
func NewRuleService(ruleRepo styling.RuleRepository, cache RecommendationCache, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{
		ruleRepo: ruleRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Create creates a new styling rule
func (s *RuleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRuleRequest) (*RuleResponse, error) {
	exists, err := s.ruleRepo.ExistsByName(ctx, tenantID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Rule with this name already exists")
	}

	priority := req.Priority
	if priority == 0 {
		priority = defaultRulePriority
	}

	rule, err := styling.NewRule(tenantID, req.Name, req.Intent, req.Constraints, priority)
	if err != nil {
		return nil, err
	}
	rule.Description = strings.TrimSpace(req.Description)
	if req.Active != nil && !*req.Active {
		if err := rule.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	resp := ToRuleResponse(rule)
	return &resp, nil
}

// GetByID retrieves a rule by ID
func (s *RuleService) GetByID(ctx context.Context, tenantID, ruleID uuid.UUID) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	resp := ToRuleResponse(rule)
	return &resp, nil
}

// List retrieves a page of rules with filtering
func (s *RuleService) List(ctx context.Context, tenantID uuid.UUID, filter RuleListFilter) ([]RuleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "priority"
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
	if label := strings.ToLower(strings.TrimSpace(filter.Intent)); label != "" {
		domainFilter.Filters["intent"] = label
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ruleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToRuleResponse(&rules[i])
	}
	return responses, total, nil
}

// Update updates a rule
func (s *RuleService) Update(ctx context.Context, tenantID, ruleID uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != rule.Name {
		exists, err := s.ruleRepo.ExistsByName(ctx, tenantID, strings.TrimSpace(*req.Name))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Rule with this name already exists")
		}
	}

	if req.Name != nil || req.Intent != nil || req.Description != nil {
		name, intent, description := rule.Name, rule.Intent, rule.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Intent != nil {
			intent = *req.Intent
		}
		if req.Description != nil {
			description = strings.TrimSpace(*req.Description)
		}
		if err := rule.Update(name, intent, description); err != nil {
			return nil, err
		}
	}
	if req.Constraints != nil {
		if err := rule.SetConstraints(*req.Constraints); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := rule.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	resp := ToRuleResponse(rule)
	return &resp, nil
}

// Activate enables a rule
func (s *RuleService) Activate(ctx context.Context, tenantID, ruleID uuid.UUID) (*RuleResponse, error) {
	return s.toggle(ctx, tenantID, ruleID, (*styling.Rule).Activate)
}

// Deactivate disables a rule
func (s *RuleService) Deactivate(ctx context.Context, tenantID, ruleID uuid.UUID) (*RuleResponse, error) {
	return s.toggle(ctx, tenantID, ruleID, (*styling.Rule).Deactivate)
}

// Delete deletes a rule
func (s *RuleService) Delete(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	if _, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID); err != nil {
		return err
	}
	if err := s.ruleRepo.DeleteForTenant(ctx, tenantID, ruleID); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *RuleService) toggle(ctx context.Context, tenantID, ruleID uuid.UUID, apply func(*styling.Rule) error) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := apply(rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	resp := ToRuleResponse(rule)
	return &resp, nil
}

// invalidate drops cached recommendations built from the shop's old rules
func (s *RuleService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cacheKeyPrefix(tenantID)); err != nil {
		s.logger.Warn("Failed to invalidate recommendation cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}
