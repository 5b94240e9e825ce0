package models_test

import (
	"testing"
	"time"

	"github.com/habitaro/authgate/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionComputedStatus_ExpiredByEndDate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)

	sub := &models.Subscription{
		Status:  models.SubscriptionActive,
		EndDate: &past,
	}

	assert.Equal(t, models.SubscriptionExpired, sub.ComputedStatus(now))
}

func TestSubscriptionComputedStatus_StoredStatusWhenNotExpired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * 24 * time.Hour)

	cases := []models.SubscriptionStatus{
		models.SubscriptionActive,
		models.SubscriptionPending,
		models.SubscriptionCanceled,
	}

	for _, status := range cases {
		sub := &models.Subscription{Status: status, EndDate: &future}
		assert.Equal(t, status, sub.ComputedStatus(now))
	}
}

func TestSubscriptionComputedStatus_NoEndDate(t *testing.T) {
	now := time.Now()

	sub := &models.Subscription{Status: models.SubscriptionActive}

	assert.Equal(t, models.SubscriptionActive, sub.ComputedStatus(now))
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("nil without end date", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionActive}
		assert.Nil(t, sub.DaysRemaining(now))
	})

	t.Run("rounds partial days up", func(t *testing.T) {
		end := now.Add(36 * time.Hour)
		sub := &models.Subscription{Status: models.SubscriptionActive, EndDate: &end}
		days := sub.DaysRemaining(now)
		assert.NotNil(t, days)
		assert.Equal(t, 2, *days)
	})

	t.Run("floored at zero when past", func(t *testing.T) {
		end := now.Add(-48 * time.Hour)
		sub := &models.Subscription{Status: models.SubscriptionActive, EndDate: &end}
		days := sub.DaysRemaining(now)
		assert.NotNil(t, days)
		assert.Equal(t, 0, *days)
	})
}

func TestAttemptRecordBlocked(t *testing.T) {
	now := time.Now()

	rec := &models.AttemptRecord{}
	assert.False(t, rec.Blocked(now))

	rec.BlockedUntil = now.Add(10 * time.Minute)
	assert.True(t, rec.Blocked(now))
	assert.False(t, rec.Blocked(now.Add(11*time.Minute)))
}
