package repositories

import (
	"context"

	"github.com/habitaro/authgate/internal/database"
)

type PlanFeatureRepository struct {
	db *database.DB
}

func NewPlanFeatureRepository(db *database.DB) *PlanFeatureRepository {
	return &PlanFeatureRepository{db: db}
}

// PlanHasFeature reports whether the plan identified by slug carries the
// given feature flag.
func (r *PlanFeatureRepository) PlanHasFeature(ctx context.Context, planSlug, feature string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM plan_features pf
			JOIN plans p ON p.id = pf.plan_id
			WHERE p.slug = $1 AND pf.feature = $2
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, planSlug, feature).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}
