package services

import (
	"context"
	"log/slog"

	"github.com/habitaro/authgate/internal/models"
)

// FeatureCustomFields is the plan feature flag that enables company-defined
// required fields.
const FeatureCustomFields = "CUSTOM_FIELDS"

// PlanFeatureRepository defines the interface for plan feature lookups
type PlanFeatureRepository interface {
	PlanHasFeature(ctx context.Context, planSlug, feature string) (bool, error)
}

// CustomFieldRepository defines the interface for custom field lookups
type CustomFieldRepository interface {
	HasUserPendingRequiredFields(ctx context.Context, userID, companyID string) (bool, error)
}

// CustomFieldGate decides whether a team member must complete required
// company fields before using the product. The check is advisory: any
// doubt resolves to "no pending fields" so a data problem never blocks a
// login.
type CustomFieldGate struct {
	planFeatures PlanFeatureRepository
	customFields CustomFieldRepository
	logger       *slog.Logger
}

// NewCustomFieldGate creates a new CustomFieldGate
func NewCustomFieldGate(planFeatures PlanFeatureRepository, customFields CustomFieldRepository, logger *slog.Logger) *CustomFieldGate {
	return &CustomFieldGate{
		planFeatures: planFeatures,
		customFields: customFields,
		logger:       logger,
	}
}

// HasPendingRequiredFields reports whether the user still owes answers to
// required custom fields. Only team members of a company on a plan with the
// custom-fields feature are ever gated; everyone else gets false.
func (g *CustomFieldGate) HasPendingRequiredFields(ctx context.Context, user *models.User, sub *models.Subscription) bool {
	if !user.IsTeamMember() || user.CompanyID == nil {
		return false
	}
	if sub == nil || sub.Plan == nil || sub.Plan.Slug == "" {
		return false
	}

	enabled, err := g.planFeatures.PlanHasFeature(ctx, sub.Plan.Slug, FeatureCustomFields)
	if err != nil {
		g.logger.Warn("custom field feature lookup failed", slog.Any("error", err))
		return false
	}
	if !enabled {
		return false
	}

	pending, err := g.customFields.HasUserPendingRequiredFields(ctx, user.ID, *user.CompanyID)
	if err != nil {
		g.logger.Warn("pending custom field lookup failed", slog.Any("error", err))
		return false
	}
	return pending
}
