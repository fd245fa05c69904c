package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/smallbiznis/valora-session/internal/storage"
)

// MemoryStore is an in-process CacheStore used when no Redis address
// is configured. Values go through a JSON round trip so typed-value
// semantics match the Redis adapter.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ storage.CacheStore = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Save stores the JSON encoding of value under key.
func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	s.mu.Lock()
	s.values[key] = payload
	s.mu.Unlock()
	return nil
}

// Get decodes the stored value into dest, reporting a miss as false.
func (s *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	payload, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cache value: %w", err)
	}
	return true, nil
}

// Remove deletes the key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key is present.
func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.values[key]
	s.mu.RUnlock()
	return ok, nil
}
