package services

import (
	"context"
	"sync"
	"time"

	"github.com/habitaro/authgate/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)

	GetByEmailCalls []string
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.GetByEmailCalls = append(m.GetByEmailCalls, email)
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

// MockSubscriptionRepository implements SubscriptionRepository for testing
type MockSubscriptionRepository struct {
	GetCurrentByUserIDFunc  func(ctx context.Context, userID string) (*models.Subscription, error)
	GetCurrentByUserIDCalls []string
}

func (m *MockSubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	m.GetCurrentByUserIDCalls = append(m.GetCurrentByUserIDCalls, userID)
	if m.GetCurrentByUserIDFunc != nil {
		return m.GetCurrentByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockPlanFeatureRepository implements PlanFeatureRepository for testing
type MockPlanFeatureRepository struct {
	PlanHasFeatureFunc func(ctx context.Context, planSlug, feature string) (bool, error)
}

func (m *MockPlanFeatureRepository) PlanHasFeature(ctx context.Context, planSlug, feature string) (bool, error) {
	if m.PlanHasFeatureFunc != nil {
		return m.PlanHasFeatureFunc(ctx, planSlug, feature)
	}
	return false, nil
}

// MockCustomFieldRepository implements CustomFieldRepository for testing
type MockCustomFieldRepository struct {
	HasUserPendingRequiredFieldsFunc func(ctx context.Context, userID, companyID string) (bool, error)
}

func (m *MockCustomFieldRepository) HasUserPendingRequiredFields(ctx context.Context, userID, companyID string) (bool, error) {
	if m.HasUserPendingRequiredFieldsFunc != nil {
		return m.HasUserPendingRequiredFieldsFunc(ctx, userID, companyID)
	}
	return false, nil
}

// fakeClock is a manually advanced Clock for deterministic lockout tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
