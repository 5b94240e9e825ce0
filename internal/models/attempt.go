package models

import "time"

// BlockReason identifies which brute-force track triggered a block.
type BlockReason string

const (
	BlockReasonNone  BlockReason = ""
	BlockReasonIP    BlockReason = "ip"
	BlockReasonEmail BlockReason = "email"
)

// AttemptRecord tracks failed login attempts for one brute-force key.
// Created on the first failure, fully reset on success for the exact key,
// and treated as absent once LastFailureAt falls outside the inactivity
// window.
type AttemptRecord struct {
	FailureCount   int       `json:"failure_count"`
	FirstFailureAt time.Time `json:"first_failure_at"`
	LastFailureAt  time.Time `json:"last_failure_at"`
	BlockedUntil   time.Time `json:"blocked_until,omitzero"` // zero = not blocked
	BlockStreak    int       `json:"block_streak,omitempty"` // consecutive blocks, drives escalation
	LastBlockedAt  time.Time `json:"last_blocked_at,omitzero"`
}

// Blocked reports whether the record holds an active block at the given time.
func (r *AttemptRecord) Blocked(now time.Time) bool {
	return !r.BlockedUntil.IsZero() && now.Before(r.BlockedUntil)
}

// BlockDecision is the outcome of a brute-force pre-check. Blocked requests
// carry the reason and the time at which a retry may succeed.
type BlockDecision struct {
	Blocked      bool
	Reason       BlockReason
	BlockedUntil time.Time
	RetryAt      time.Time
}
