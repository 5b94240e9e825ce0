package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/habitaro/authgate/internal/models"
)

// MemoryAttemptStore keeps attempt records in process memory. Suitable for
// single-instance deployments; multi-instance deployments should use the
// Redis-backed store so all instances see the same counters.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	records map[string]*memoryEntry
}

type memoryEntry struct {
	record    models.AttemptRecord
	expiresAt time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		records: make(map[string]*memoryEntry),
	}
}

func (s *MemoryAttemptStore) Get(ctx context.Context, key string) (*models.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.records, key)
		return nil, nil
	}

	rec := entry.record
	return &rec, nil
}

func (s *MemoryAttemptStore) Put(ctx context.Context, key string, record *models.AttemptRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{record: *record}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.records[key] = entry
	return nil
}

func (s *MemoryAttemptStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

// Sweep drops entries whose housekeeping TTL has lapsed and returns how many
// were removed. Called periodically by the background janitor.
func (s *MemoryAttemptStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range s.records {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryAttemptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
