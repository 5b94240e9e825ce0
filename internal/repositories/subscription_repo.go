package repositories

import (
	"context"
	"errors"

	"github.com/habitaro/authgate/internal/database"
	"github.com/habitaro/authgate/internal/models"
)

type SubscriptionRepository struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetCurrentByUserID returns the user's most recent subscription with its
// plan and feature set, or (nil, nil) when the user has none. The stored
// status comes back as-is; callers derive the computed status themselves.
func (r *SubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.plan_id, s.status, s.start_date, s.end_date, s.created_at, s.updated_at,
		       p.id, p.slug, p.name, p.price,
		       COALESCE(array_agg(pf.feature) FILTER (WHERE pf.feature IS NOT NULL), '{}')
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		LEFT JOIN plan_features pf ON pf.plan_id = p.id
		WHERE s.user_id = $1
		GROUP BY s.id, p.id
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	var sub models.Subscription
	var plan models.Plan

	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.StartDate, &sub.EndDate,
		&sub.CreatedAt, &sub.UpdatedAt,
		&plan.ID, &plan.Slug, &plan.Name, &plan.Price,
		&plan.Features,
	)
	if err != nil {
		mapped := database.MapPostgresError(err)
		if errors.Is(mapped, models.ErrNotFound) {
			return nil, nil
		}
		return nil, mapped
	}

	sub.Plan = &plan
	return &sub, nil
}
