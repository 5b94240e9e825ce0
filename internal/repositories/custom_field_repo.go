package repositories

import (
	"context"

	"github.com/habitaro/authgate/internal/database"
)

type CustomFieldRepository struct {
	db *database.DB
}

func NewCustomFieldRepository(db *database.DB) *CustomFieldRepository {
	return &CustomFieldRepository{db: db}
}

// HasUserPendingRequiredFields reports whether the company has any active,
// required custom field for which the user has no answered response.
func (r *CustomFieldRepository) HasUserPendingRequiredFields(ctx context.Context, userID, companyID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM custom_fields cf
			LEFT JOIN custom_field_responses cfr
				ON cfr.field_id = cf.id AND cfr.user_id = $1 AND cfr.value IS NOT NULL
			WHERE cf.company_id = $2
			  AND cf.is_active = true
			  AND cf.is_required = true
			  AND cfr.id IS NULL
		)
	`

	var pending bool
	if err := r.db.Pool.QueryRow(ctx, query, userID, companyID).Scan(&pending); err != nil {
		return false, database.MapPostgresError(err)
	}
	return pending, nil
}
