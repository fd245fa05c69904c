// Package session owns the process-wide authentication state. The
// state is resolved once at startup and mutated afterwards only by the
// explicit login-success and logout entry points.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-session/internal/domain"
	"github.com/smallbiznis/valora-session/internal/storage"
)

// State is a snapshot of the authentication state. CurrentUser is nil
// unless IsAuthenticated is true.
type State struct {
	IsCheckingAuth  bool
	IsAuthenticated bool
	CurrentUser     *domain.UserIdentity
}

// Manager is the single writer of the authentication state.
type Manager struct {
	mu          sync.RWMutex
	state       State
	resolveOnce sync.Once
	secure      storage.SecureStore
	cache       storage.CacheStore
	logger      *zap.Logger
}

// NewManager starts in the checking state.
func NewManager(secure storage.SecureStore, cache storage.CacheStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.L()
	}
	return &Manager{
		state:  State{IsCheckingAuth: true},
		secure: secure,
		cache:  cache,
		logger: logger,
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Resolve decides whether the persisted session is valid. It runs at
// most once per process; later calls return the settled state. A token
// without a matching identity snapshot resolves unauthenticated
// rather than triggering a re-fetch: partial state is not trusted.
func (m *Manager) Resolve(ctx context.Context) State {
	m.resolveOnce.Do(func() {
		next := State{}

		token, err := m.secure.Get(storage.KeyAccessToken)
		if err != nil {
			m.logger.Warn("read access token", zap.Error(err))
		}
		if strings.TrimSpace(token) != "" {
			var identity domain.UserIdentity
			ok, err := m.cache.Get(ctx, storage.KeySessionUser, &identity)
			if err != nil {
				m.logger.Warn("read session user", zap.Error(err))
			}
			if ok {
				next.IsAuthenticated = true
				next.CurrentUser = &identity
			}
		}

		m.mu.Lock()
		m.state = next
		m.mu.Unlock()
	})
	return m.State()
}

// LoginSuccess installs a freshly validated identity without touching
// storage; the repository already persisted it.
func (m *Manager) LoginSuccess(identity domain.UserIdentity) {
	m.mu.Lock()
	m.state = State{IsAuthenticated: true, CurrentUser: &identity}
	m.mu.Unlock()
}

// Logout wipes the secure store and the identity snapshot, then flips
// the state. Both happen under the same lock so no reader ever sees an
// authenticated state pointing at wiped storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	if err := m.secure.ClearAll(); err != nil {
		m.logger.Warn("clear secure store", zap.Error(err))
		firstErr = err
	}
	if err := m.cache.Remove(ctx, storage.KeySessionUser); err != nil {
		m.logger.Warn("remove session user", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	m.state = State{}
	return firstErr
}
