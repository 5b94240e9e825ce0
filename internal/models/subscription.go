package models

import (
	"math"
	"time"
)

// SubscriptionStatus is the stored lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

type Plan struct {
	ID       string
	Slug     string
	Name     string
	Price    float64
	Features []string
}

type Subscription struct {
	ID        string
	UserID    string
	PlanID    string
	Status    SubscriptionStatus
	StartDate time.Time
	EndDate   *time.Time
	Plan      *Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputedStatus derives the effective status at a point in time. A
// subscription whose end date has passed is expired regardless of the
// stored status. Pure function of (status, endDate, now); callers must
// not cache the result across authorization decisions.
func (s *Subscription) ComputedStatus(now time.Time) SubscriptionStatus {
	if s.EndDate != nil && s.EndDate.Before(now) {
		return SubscriptionExpired
	}
	return s.Status
}

// DaysRemaining returns the number of whole or partial days until the end
// date, floored at zero. Nil when the subscription has no end date.
func (s *Subscription) DaysRemaining(now time.Time) *int {
	if s.EndDate == nil {
		return nil
	}
	days := int(math.Ceil(s.EndDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}
