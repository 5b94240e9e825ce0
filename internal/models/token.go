package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose scopes a signed token to a single consumer. Every verifier
// checks the purpose claim explicitly; a valid signature alone is never
// sufficient.
type TokenPurpose string

const (
	PurposeAccess   TokenPurpose = "access"
	PurposeRefresh  TokenPurpose = "refresh"
	PurposeCheckout TokenPurpose = "checkout"
)

// UserSummary is the user snapshot embedded in checkout tokens.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionSummary is the subscription snapshot embedded in checkout tokens.
type SubscriptionSummary struct {
	ID     string             `json:"id"`
	Status SubscriptionStatus `json:"status"`
}

// PlanSummary is the plan snapshot embedded in checkout tokens.
type PlanSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type TokenClaims struct {
	Purpose      TokenPurpose         `json:"purpose"`
	Role         string               `json:"role,omitempty"`
	CompanyID    string               `json:"companyId,omitempty"`
	User         *UserSummary         `json:"user,omitempty"`
	Subscription *SubscriptionSummary `json:"subscription,omitempty"`
	Plan         *PlanSummary         `json:"plan,omitempty"`
	jwt.RegisteredClaims
}
