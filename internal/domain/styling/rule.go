package styling

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/shared"
)

const (
	MinRulePriority = 1
	MaxRulePriority = 10
)

// Rule is a named constraint set attached to an intent label.
// Several active rules may share a label; higher priority wins on conflict.
type Rule struct {
	shared.TenantAggregateRoot
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_rule_tenant_name,priority:2"`
	Intent      string         `gorm:"type:varchar(50);not null;index"`
	Description string         `gorm:"type:text"`
	Constraints ConstraintSpec `gorm:"type:text;not null"`
	Priority    int            `gorm:"not null;default:5"`
	Active      bool           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Rule) TableName() string {
	return "styling_rules"
}

// NewRule creates a new active styling rule
func NewRule(tenantID uuid.UUID, name, intent string, constraints ConstraintSpec, priority int) (*Rule, error) {
	if err := validateRuleName(name); err != nil {
		return nil, err
	}
	if err := validateIntentLabel(intent); err != nil {
		return nil, err
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	return &Rule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Intent:              normalizeLabel(intent),
		Constraints:         constraints.Normalize(),
		Priority:            priority,
		Active:              true,
	}, nil
}

// Update updates the rule's name, intent label and description
func (r *Rule) Update(name, intent, description string) error {
	if err := validateRuleName(name); err != nil {
		return err
	}
	if err := validateIntentLabel(intent); err != nil {
		return err
	}

	r.Name = strings.TrimSpace(name)
	r.Intent = normalizeLabel(intent)
	r.Description = description
	r.Touch()

	return nil
}

// SetConstraints replaces the rule's constraints
func (r *Rule) SetConstraints(constraints ConstraintSpec) error {
	if err := constraints.Validate(); err != nil {
		return err
	}

	r.Constraints = constraints.Normalize()
	r.Touch()

	return nil
}

// SetPriority sets the rule priority
func (r *Rule) SetPriority(priority int) error {
	if err := validatePriority(priority); err != nil {
		return err
	}

	r.Priority = priority
	r.Touch()

	return nil
}

// Activate enables the rule
func (r *Rule) Activate() error {
	if r.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Rule is already active")
	}

	r.Active = true
	r.Touch()

	return nil
}

// Deactivate disables the rule
func (r *Rule) Deactivate() error {
	if !r.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Rule is already inactive")
	}

	r.Active = false
	r.Touch()

	return nil
}

func validateRuleName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Rule name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Rule name cannot exceed 100 characters")
	}
	return nil
}

func validateIntentLabel(intent string) error {
	intent = strings.TrimSpace(intent)
	if intent == "" {
		return shared.NewDomainError("INVALID_INTENT", "Intent label cannot be empty")
	}
	if len(intent) > 50 {
		return shared.NewDomainError("INVALID_INTENT", "Intent label cannot exceed 50 characters")
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < MinRulePriority || priority > MaxRulePriority {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority must be between 1 and 10")
	}
	return nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
