package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/habitaro/authgate/internal/config"
	"github.com/habitaro/authgate/internal/models"
)

// AttemptStore defines the interface for persisting brute-force attempt records
type AttemptStore interface {
	Get(ctx context.Context, key string) (*models.AttemptRecord, error)
	Put(ctx context.Context, key string, record *models.AttemptRecord, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Sweep(ctx context.Context) (int, error)
}

const lockShards = 64

// BruteForceGuard enforces per-IP and per-(IP,email) lockouts on login
// attempts. The IP track catches credential stuffing across many accounts;
// the account track catches targeted guessing, and scoping it to the IP
// keeps an attacker from locking a victim out of their own account.
type BruteForceGuard struct {
	store  AttemptStore
	config config.BruteForceConfig
	clock  Clock
	logger *slog.Logger

	// Striped per-key locks serialize read-modify-write cycles for one key
	// without stalling traffic on unrelated keys. Each track is handled
	// under its own key lock, one at a time, so no two stripes are ever
	// held together. Counters shared through Redis can still race across
	// instances; a lost update there costs at most one counted attempt.
	locks [lockShards]sync.Mutex
}

// NewBruteForceGuard creates a new BruteForceGuard
func NewBruteForceGuard(store AttemptStore, cfg config.BruteForceConfig, clock Clock, logger *slog.Logger) *BruteForceGuard {
	return &BruteForceGuard{
		store:  store,
		config: cfg,
		clock:  clock,
		logger: logger,
	}
}

func ipKey(ip string) string             { return "ip:" + ip }
func accountKey(ip, email string) string { return "acct:" + ip + "|" + email }

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % lockShards
}

func (g *BruteForceGuard) lockKey(key string) *sync.Mutex {
	mu := &g.locks[shardIndex(key)]
	mu.Lock()
	return mu
}

// track pairs a store key with the threshold and reason of its lane.
type track struct {
	key       string
	threshold int
	reason    models.BlockReason
}

func (g *BruteForceGuard) tracks(ip, email string) [2]track {
	return [2]track{
		{ipKey(ip), g.config.IPMaxAttempts, models.BlockReasonIP},
		{accountKey(ip, email), g.config.EmailMaxAttempts, models.BlockReasonEmail},
	}
}

// IsBlocked reports whether login attempts from this IP, or for this
// account from this IP, are currently locked out. When both tracks are
// blocked the decision carries the later retry time.
func (g *BruteForceGuard) IsBlocked(ctx context.Context, ip, email string) (*models.BlockDecision, error) {
	now := g.clock.Now()
	decision := &models.BlockDecision{}

	for _, tr := range g.tracks(ip, email) {
		record, err := g.peekTrack(ctx, tr.key, now)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.Blocked(now) {
			continue
		}
		mergeDecision(decision, tr.reason, record.BlockedUntil)
	}

	return decision, nil
}

// RegisterFailedAttempt counts one failed credential check against both
// tracks and returns the resulting decision when either track holds a
// block. Only credential failures are counted; account-state and
// entitlement rejections prove the caller already knows the password.
func (g *BruteForceGuard) RegisterFailedAttempt(ctx context.Context, ip, email string) (*models.BlockDecision, error) {
	now := g.clock.Now()
	decision := &models.BlockDecision{}

	for _, tr := range g.tracks(ip, email) {
		record, err := g.failTrack(ctx, tr, now)
		if err != nil {
			return nil, err
		}
		if record.Blocked(now) {
			mergeDecision(decision, tr.reason, record.BlockedUntil)
		}
	}

	return decision, nil
}

// RegisterSuccessfulAttempt clears both tracks for the exact (ip, email)
// pair. Records for other IPs attacking the same account are untouched.
func (g *BruteForceGuard) RegisterSuccessfulAttempt(ctx context.Context, ip, email string) error {
	return g.store.Delete(ctx, ipKey(ip), accountKey(ip, email))
}

// RemainingAttempts returns how many more credential failures the account
// track tolerates before a lockout, floored at zero.
func (g *BruteForceGuard) RemainingAttempts(ctx context.Context, ip, email string) (int, error) {
	record, err := g.peekTrack(ctx, accountKey(ip, email), g.clock.Now())
	if err != nil {
		return 0, err
	}

	remaining := g.config.EmailMaxAttempts
	if record != nil {
		remaining -= record.FailureCount
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// peekTrack reads one track's active record under its key lock.
func (g *BruteForceGuard) peekTrack(ctx context.Context, key string, now time.Time) (*models.AttemptRecord, error) {
	mu := g.lockKey(key)
	defer mu.Unlock()

	return g.loadActive(ctx, key, now)
}

// failTrack runs one track's read-increment-write cycle under its key lock.
func (g *BruteForceGuard) failTrack(ctx context.Context, tr track, now time.Time) (*models.AttemptRecord, error) {
	mu := g.lockKey(tr.key)
	defer mu.Unlock()

	record, err := g.loadActive(ctx, tr.key, now)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.AttemptRecord{FirstFailureAt: now}
	}

	record.FailureCount++
	record.LastFailureAt = now

	if record.FailureCount >= tr.threshold && !record.Blocked(now) {
		g.applyBlock(record, now)
		g.logger.Warn("login lockout applied",
			slog.String("reason", string(tr.reason)),
			slog.Int("failure_count", record.FailureCount),
			slog.Int("block_streak", record.BlockStreak),
			slog.Time("blocked_until", record.BlockedUntil))
	}

	if err := g.store.Put(ctx, tr.key, record, g.recordTTL(record, now)); err != nil {
		return nil, fmt.Errorf("failed to persist attempt record: %w", err)
	}

	return record, nil
}

// loadActive reads a record and applies the inactivity window: a record
// whose last failure is older than the window, and which holds no active
// block, is treated as absent. The store TTL is housekeeping only; this
// check is the authoritative one. Callers hold the key's lock.
func (g *BruteForceGuard) loadActive(ctx context.Context, key string, now time.Time) (*models.AttemptRecord, error) {
	record, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt record: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	if !record.Blocked(now) && now.Sub(record.LastFailureAt) > g.config.InactivityWindow {
		if err := g.store.Delete(ctx, key); err != nil {
			g.logger.Warn("failed to drop stale attempt record", slog.Any("error", err))
		}
		return nil, nil
	}
	return record, nil
}

// applyBlock sets a lockout whose duration doubles for each re-offense
// within the escalation window of the previous block, capped at the
// configured maximum.
func (g *BruteForceGuard) applyBlock(record *models.AttemptRecord, now time.Time) {
	if !record.LastBlockedAt.IsZero() && now.Sub(record.LastBlockedAt) <= g.config.EscalationWindow {
		record.BlockStreak++
	} else {
		record.BlockStreak = 1
	}

	duration := g.config.LockoutBase
	for i := 1; i < record.BlockStreak; i++ {
		duration *= 2
		if duration >= g.config.LockoutMax {
			duration = g.config.LockoutMax
			break
		}
	}
	if duration > g.config.LockoutMax {
		duration = g.config.LockoutMax
	}

	record.BlockedUntil = now.Add(duration)
	record.LastBlockedAt = now
}

// recordTTL keeps the stored record alive long enough for both the
// inactivity check and any active block to be observed.
func (g *BruteForceGuard) recordTTL(record *models.AttemptRecord, now time.Time) time.Duration {
	ttl := g.config.InactivityWindow
	if record.Blocked(now) {
		if blockTTL := record.BlockedUntil.Sub(now) + g.config.InactivityWindow; blockTTL > ttl {
			ttl = blockTTL
		}
	}
	return ttl
}

// mergeDecision folds one blocked track into the decision, keeping the
// later retry time when both tracks are blocked.
func mergeDecision(decision *models.BlockDecision, reason models.BlockReason, blockedUntil time.Time) {
	if decision.Blocked && !blockedUntil.After(decision.BlockedUntil) {
		return
	}
	decision.Blocked = true
	decision.Reason = reason
	decision.BlockedUntil = blockedUntil
	decision.RetryAt = blockedUntil
}
