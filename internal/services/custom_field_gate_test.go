package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitaro/authgate/internal/models"
)

func gatedUser() *models.User {
	return &models.User{
		ID:        "member1",
		CompanyID: strPtr("company1"),
		CreatedBy: strPtr("owner1"),
	}
}

func gatedSubscription() *models.Subscription {
	return &models.Subscription{
		ID:   "sub1",
		Plan: &models.Plan{ID: "plan1", Slug: "pro"},
	}
}

func TestCustomFieldGate_PendingFields(t *testing.T) {
	planFeatures := &MockPlanFeatureRepository{
		PlanHasFeatureFunc: func(ctx context.Context, planSlug, feature string) (bool, error) {
			assert.Equal(t, "pro", planSlug)
			assert.Equal(t, FeatureCustomFields, feature)
			return true, nil
		},
	}
	customFields := &MockCustomFieldRepository{
		HasUserPendingRequiredFieldsFunc: func(ctx context.Context, userID, companyID string) (bool, error) {
			assert.Equal(t, "member1", userID)
			assert.Equal(t, "company1", companyID)
			return true, nil
		},
	}
	gate := NewCustomFieldGate(planFeatures, customFields, discardLogger())

	assert.True(t, gate.HasPendingRequiredFields(context.Background(), gatedUser(), gatedSubscription()))
}

func TestCustomFieldGate_OnlyTeamMembersAreGated(t *testing.T) {
	calls := 0
	planFeatures := &MockPlanFeatureRepository{
		PlanHasFeatureFunc: func(ctx context.Context, planSlug, feature string) (bool, error) {
			calls++
			return true, nil
		},
	}
	gate := NewCustomFieldGate(planFeatures, &MockCustomFieldRepository{}, discardLogger())

	owner := gatedUser()
	owner.CreatedBy = nil
	assert.False(t, gate.HasPendingRequiredFields(context.Background(), owner, gatedSubscription()))

	// An empty creator reference reads the same as none at all.
	blankCreator := gatedUser()
	blankCreator.CreatedBy = strPtr("")
	assert.False(t, gate.HasPendingRequiredFields(context.Background(), blankCreator, gatedSubscription()))

	noCompany := gatedUser()
	noCompany.CompanyID = nil
	assert.False(t, gate.HasPendingRequiredFields(context.Background(), noCompany, gatedSubscription()))

	assert.Equal(t, 0, calls)
}

func TestCustomFieldGate_PlanWithoutFeature(t *testing.T) {
	gate := NewCustomFieldGate(&MockPlanFeatureRepository{}, &MockCustomFieldRepository{
		HasUserPendingRequiredFieldsFunc: func(ctx context.Context, userID, companyID string) (bool, error) {
			t.Fatal("custom field lookup should not run when the plan lacks the feature")
			return false, nil
		},
	}, discardLogger())

	assert.False(t, gate.HasPendingRequiredFields(context.Background(), gatedUser(), gatedSubscription()))
}

func TestCustomFieldGate_MissingSubscriptionOrPlan(t *testing.T) {
	gate := NewCustomFieldGate(&MockPlanFeatureRepository{}, &MockCustomFieldRepository{}, discardLogger())

	assert.False(t, gate.HasPendingRequiredFields(context.Background(), gatedUser(), nil))
	assert.False(t, gate.HasPendingRequiredFields(context.Background(), gatedUser(), &models.Subscription{}))
}

func TestCustomFieldGate_LookupErrorsFailOpen(t *testing.T) {
	planFeatures := &MockPlanFeatureRepository{
		PlanHasFeatureFunc: func(ctx context.Context, planSlug, feature string) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	gate := NewCustomFieldGate(planFeatures, &MockCustomFieldRepository{}, discardLogger())

	assert.False(t, gate.HasPendingRequiredFields(context.Background(), gatedUser(), gatedSubscription()))
}
