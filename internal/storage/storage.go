// Package storage defines the narrow persistence contracts the session
// core consumes. Concrete implementations live under internal/adapter.
package storage

import "context"

// Fixed keys shared by the repository and the session bootstrap. The
// secure store exclusively owns raw token bytes; the cache store owns
// the persisted domain snapshots.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeySessionUser  = "kSessionUser"
	KeyFullProfile  = "kFullProfile"
)

// SecureStore is a durable key to secret mapping, keychain style.
// Get returns an empty string for a missing key.
type SecureStore interface {
	Save(key, value string) error
	Get(key string) (string, error)
	ClearAll() error
}

// CacheStore is a durable key to typed-value mapping for last-known-good
// domain objects. Get reports whether the key was present and decodes
// into dest when it was.
type CacheStore interface {
	Save(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Remove(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}
