package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/habitaro/authgate/internal/models"
)

const attemptKeyPrefix = "login_attempts:"

// RedisAttemptStore shares attempt records across instances through Redis.
// Records are stored as JSON with a housekeeping TTL; the guard applies the
// authoritative inactivity window itself.
type RedisAttemptStore struct {
	client *redis.Client
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func (s *RedisAttemptStore) Get(ctx context.Context, key string) (*models.AttemptRecord, error) {
	data, err := s.client.Get(ctx, attemptKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt record: %w", err)
	}

	var record models.AttemptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode attempt record: %w", err)
	}
	return &record, nil
}

func (s *RedisAttemptStore) Put(ctx context.Context, key string, record *models.AttemptRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode attempt record: %w", err)
	}

	if err := s.client.Set(ctx, attemptKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write attempt record: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = attemptKeyPrefix + key
	}

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete attempt records: %w", err)
	}
	return nil
}

// Sweep is a no-op for Redis; key TTLs handle expiry server-side.
func (s *RedisAttemptStore) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}
