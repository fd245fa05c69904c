package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/smallbiznis/valora-session/internal/storage"
)

// RedisStore implements storage.CacheStore backed by Redis. Snapshots
// are stored as JSON without expiry; the repository overwrites them on
// every successful fetch.
type RedisStore struct {
	client redis.UniversalClient
}

var _ storage.CacheStore = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed cache store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores the encoded value under key, replacing any previous one.
func (s *RedisStore) Save(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("persist cache value: %w", err)
	}
	return nil
}

// Get loads and decodes the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("load cache value: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cache value: %w", err)
	}
	return true, nil
}

// Remove deletes the persisted key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete cache value: %w", err)
	}
	return nil
}

// Has reports whether key is present without decoding it.
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check cache key: %w", err)
	}
	return count > 0, nil
}
