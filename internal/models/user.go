package models

import (
	"time"
)

type User struct {
	ID              string
	Email           string
	PasswordHash    *string // NULL for invited users who never set a password
	Name            string
	Role            string // e.g., "owner", "member", "admin"
	CompanyID       *string
	CreatedBy       *string // Owner who provisioned this user; NULL for account owners
	IsEmailVerified bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTeamMember reports whether the user was provisioned by an account owner.
func (u *User) IsTeamMember() bool {
	return u.CreatedBy != nil && *u.CreatedBy != ""
}
