package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/habitaro/authgate/internal/models"
)

// SubscriptionRepository defines the interface for subscription lookups
type SubscriptionRepository interface {
	GetCurrentByUserID(ctx context.Context, userID string) (*models.Subscription, error)
}

// SubscriptionResolver resolves the subscription that governs a user's
// access. Team members without their own subscription inherit the one held
// by the account that created them.
type SubscriptionResolver struct {
	repo   SubscriptionRepository
	logger *slog.Logger
}

// NewSubscriptionResolver creates a new SubscriptionResolver
func NewSubscriptionResolver(repo SubscriptionRepository, logger *slog.Logger) *SubscriptionResolver {
	return &SubscriptionResolver{repo: repo, logger: logger}
}

// Resolve returns the user's own subscription, falling back exactly one hop
// to the creator's subscription. Returns nil when neither exists.
func (r *SubscriptionResolver) Resolve(ctx context.Context, user *models.User) (*models.Subscription, error) {
	sub, err := r.repo.GetCurrentByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscription: %w", err)
	}
	if sub != nil {
		return sub, nil
	}

	if user.CreatedBy == nil {
		return nil, nil
	}

	// One hop only. The creator's own creator is never consulted, even
	// when the creator has no subscription either.
	ownerSub, err := r.repo.GetCurrentByUserID(ctx, *user.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner subscription: %w", err)
	}
	if ownerSub != nil {
		r.logger.Debug("subscription inherited from account owner",
			slog.String("user_id", user.ID),
			slog.String("owner_id", *user.CreatedBy))
	}
	return ownerSub, nil
}
