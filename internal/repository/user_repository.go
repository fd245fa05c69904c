// Package repository orchestrates the transport, the response
// pipeline, and the two stores. It owns token persistence, cache
// writes, and the fallback-to-cache read policy.
package repository

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-session/internal/domain"
	"github.com/smallbiznis/valora-session/internal/pipeline"
	"github.com/smallbiznis/valora-session/internal/storage"
	"github.com/smallbiznis/valora-session/internal/transport"
)

const (
	loginPath   = "/api/v1/auth/login"
	profilePath = "/api/v1/users/profile"
)

// UserRepository is the contract exposed to the presentation layer.
type UserRepository interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.UserIdentity, error)
	GetProfile(ctx context.Context) (domain.UserProfile, error)
}

// Repository is the default UserRepository.
type Repository struct {
	transport transport.Transport
	secure    storage.SecureStore
	cache     storage.CacheStore
	logger    *zap.Logger
}

var _ UserRepository = (*Repository)(nil)

// New wires dependencies.
func New(t transport.Transport, secure storage.SecureStore, cache storage.CacheStore, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.L()
	}
	return &Repository{transport: t, secure: secure, cache: cache, logger: logger}
}

// Login authenticates the credentials and returns the session user
// with tokens stripped. On success the tokens are handed to the secure
// store and the identity snapshot to the cache; persistence failures
// are logged, not propagated, because the in-memory session is already
// valid for this run. On failure nothing is persisted.
func (r *Repository) Login(ctx context.Context, creds domain.Credentials) (domain.UserIdentity, error) {
	body, callErr := r.transport.Execute(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body: loginRequest{
			Username:    creds.Username,
			Password:    creds.Password,
			DeviceToken: creds.DeviceToken,
		},
	})

	payload, err := pipeline.Parse[authPayload](body, callErr)
	if err != nil {
		return domain.UserIdentity{}, err
	}

	session := payload.session()
	r.persistSession(ctx, session)
	return session.User, nil
}

// persistSession writes the token pair and the identity snapshot. It
// skips the writes entirely when the caller's context is already gone,
// so no side effect lands after the caller was torn down.
func (r *Repository) persistSession(ctx context.Context, session domain.AuthSession) {
	if ctx.Err() != nil {
		r.logger.Warn("caller gone before session persistence", zap.Error(ctx.Err()))
		return
	}

	if err := r.secure.Save(storage.KeyAccessToken, session.AccessToken); err != nil {
		r.logger.Warn("persist access token", zap.Error(err))
	}
	if err := r.secure.Save(storage.KeyRefreshToken, session.RefreshToken); err != nil {
		r.logger.Warn("persist refresh token", zap.Error(err))
	}
	if err := r.cache.Save(ctx, storage.KeySessionUser, session.User); err != nil {
		r.logger.Warn("persist session user", zap.Error(err))
	}
}

// GetProfile fetches the full profile and overwrites the cached
// snapshot. When the fetch fails for any reason and a snapshot exists,
// the snapshot is returned instead of the error; with no snapshot the
// original error propagates unchanged.
func (r *Repository) GetProfile(ctx context.Context) (domain.UserProfile, error) {
	body, callErr := r.transport.Execute(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         profilePath,
		AuthRequired: true,
	})

	payload, err := pipeline.Parse[profilePayload](body, callErr)
	if err != nil {
		var cached domain.UserProfile
		if ok, cacheErr := r.cache.Get(ctx, storage.KeyFullProfile, &cached); cacheErr == nil && ok {
			r.logger.Info("profile fetch failed, serving cached snapshot", zap.Error(err))
			return cached, nil
		}
		return domain.UserProfile{}, err
	}

	profile := payload.toDomain()
	if ctx.Err() == nil {
		if err := r.cache.Save(ctx, storage.KeyFullProfile, profile); err != nil {
			r.logger.Warn("persist profile snapshot", zap.Error(err))
		}
	}
	return profile, nil
}
