package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitaro/authgate/internal/models"
	"github.com/habitaro/authgate/pkg/auth"
)

// TestUser generates unique test user credentials using a timestamp
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

// SeedUser inserts a verified, active user with a hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, email, password string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (email, password_hash, name, role, is_email_verified, is_active)
		VALUES ($1, $2, 'Test User', 'owner', TRUE, TRUE)
		RETURNING id, email, password_hash, name, role, company_id, created_by,
		          is_email_verified, is_active, created_at, updated_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, email, hashedPassword).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Role, &user.CompanyID, &user.CreatedBy,
		&user.IsEmailVerified, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedTeamMember inserts a user provisioned by an owner inside a company
func SeedTeamMember(ctx context.Context, pool *pgxpool.Pool, email, password, ownerID, companyID string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (email, password_hash, name, role, company_id, created_by, is_email_verified, is_active)
		VALUES ($1, $2, 'Team Member', 'member', $3, $4, TRUE, TRUE)
		RETURNING id
	`

	var id string
	if err := pool.QueryRow(ctx, query, email, hashedPassword, companyID, ownerID).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert team member: %w", err)
	}

	return &models.User{ID: id, Email: email}, nil
}

// SeedPlan inserts a plan with the given feature flags
func SeedPlan(ctx context.Context, pool *pgxpool.Pool, slug string, price float64, features ...string) (string, error) {
	var planID string
	query := `INSERT INTO plans (slug, name, price) VALUES ($1, $2, $3) RETURNING id`
	if err := pool.QueryRow(ctx, query, slug, slug, price).Scan(&planID); err != nil {
		return "", fmt.Errorf("failed to insert plan: %w", err)
	}

	for _, feature := range features {
		if _, err := pool.Exec(ctx,
			`INSERT INTO plan_features (plan_id, feature) VALUES ($1, $2)`, planID, feature); err != nil {
			return "", fmt.Errorf("failed to insert plan feature: %w", err)
		}
	}

	return planID, nil
}

// SeedSubscription inserts a subscription for a user
func SeedSubscription(ctx context.Context, pool *pgxpool.Pool, userID, planID string, status models.SubscriptionStatus, endDate *time.Time) (string, error) {
	var subID string
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, start_date, end_date)
		VALUES ($1, $2, $3, NOW(), $4)
		RETURNING id
	`
	if err := pool.QueryRow(ctx, query, userID, planID, status, endDate).Scan(&subID); err != nil {
		return "", fmt.Errorf("failed to insert subscription: %w", err)
	}
	return subID, nil
}

// SeedRequiredCustomField inserts an active required field for a company
func SeedRequiredCustomField(ctx context.Context, pool *pgxpool.Pool, companyID, name string) (string, error) {
	var fieldID string
	query := `
		INSERT INTO custom_fields (company_id, name, is_required, is_active)
		VALUES ($1, $2, TRUE, TRUE)
		RETURNING id
	`
	if err := pool.QueryRow(ctx, query, companyID, name).Scan(&fieldID); err != nil {
		return "", fmt.Errorf("failed to insert custom field: %w", err)
	}
	return fieldID, nil
}
