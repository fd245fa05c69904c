package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-session/internal/domain"
	"github.com/smallbiznis/valora-session/internal/repository"
	"github.com/smallbiznis/valora-session/internal/storage"
	"github.com/smallbiznis/valora-session/internal/transport"
)

const loginBody = `{
	"meta": {"code": 200, "status": "success", "message": "OK"},
	"data": {
		"access_token": "acc-1",
		"refresh_token": "ref-1",
		"token_type": "Bearer",
		"data": {"id": 7, "username": "nunu", "fullname": "Nunu Nugraha", "email": "nunu@mail.test"}
	}
}`

const profileBody = `{
	"meta": {"code": 200, "status": "success", "message": "OK"},
	"data": {
		"id": 7,
		"fullname": "Nunu Nugraha",
		"username": "nunu",
		"email": "nunu@mail.test",
		"no_telp": "0812000",
		"photo_profile_url": "https://cdn.test/a.png",
		"join_date": "2023-01-01",
		"kmpoin": 120
	}
}`

func TestLoginSuccessPersistsTokensAndIdentity(t *testing.T) {
	secure := newMemorySecureStore()
	cache := newMemoryCacheStore()
	fake := &fakeTransport{body: []byte(loginBody)}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	identity, err := repo.Login(context.Background(), domain.Credentials{
		Username: "nunu", Password: "secret", DeviceToken: "fcm-1",
	})
	require.NoError(t, err)
	require.Equal(t, "7", identity.ID)
	require.Equal(t, "nunu", identity.Username)
	require.Equal(t, "Nunu Nugraha", identity.Fullname)

	require.False(t, fake.lastRequest.AuthRequired)

	require.Equal(t, 2, secure.saves)
	require.Equal(t, "acc-1", secure.values[storage.KeyAccessToken])
	require.Equal(t, "ref-1", secure.values[storage.KeyRefreshToken])

	require.Equal(t, 1, cache.saves)
	var cached domain.UserIdentity
	ok, err := cache.Get(context.Background(), storage.KeySessionUser, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, identity, cached)
}

func TestLoginFailurePersistsNothing(t *testing.T) {
	secure := newMemorySecureStore()
	cache := newMemoryCacheStore()
	fake := &fakeTransport{err: domain.NewServerError(401, nil)}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	_, err := repo.Login(context.Background(), domain.Credentials{Username: "nunu", Password: "bad"})
	authErr, ok := domain.AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, domain.AuthInvalidCredentials, authErr.Kind)

	require.Zero(t, secure.saves)
	require.Zero(t, cache.saves)
}

func TestLoginSucceedsWhenTokenPersistenceFails(t *testing.T) {
	secure := newMemorySecureStore()
	secure.saveErr = errors.New("keychain busy")
	cache := newMemoryCacheStore()
	fake := &fakeTransport{body: []byte(loginBody)}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	identity, err := repo.Login(context.Background(), domain.Credentials{Username: "nunu", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "7", identity.ID)
}

func TestLoginInvalidPayloadIsDecodingError(t *testing.T) {
	body := `{"meta":{"code":200,"status":"success","message":"OK"},"data":{"access_token":"","data":{"id":0}}}`
	secure := newMemorySecureStore()
	cache := newMemoryCacheStore()
	fake := &fakeTransport{body: []byte(body)}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	_, err := repo.Login(context.Background(), domain.Credentials{Username: "nunu", Password: "secret"})
	infraErr, ok := domain.AsInfraError(err)
	require.True(t, ok)
	require.Equal(t, domain.InfraDecoding, infraErr.Kind)
	require.Zero(t, secure.saves)
	require.Zero(t, cache.saves)
}

func TestGetProfileSuccessOverwritesCache(t *testing.T) {
	secure := newMemorySecureStore()
	cache := newMemoryCacheStore()
	stale := domain.UserProfile{ID: "7", Fullname: "Old Name", Username: "nunu", Email: "nunu@mail.test"}
	require.NoError(t, cache.Save(context.Background(), storage.KeyFullProfile, stale))

	fake := &fakeTransport{body: []byte(profileBody)}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	profile, err := repo.GetProfile(context.Background())
	require.NoError(t, err)
	require.True(t, fake.lastRequest.AuthRequired)
	require.Equal(t, "Nunu Nugraha", profile.Fullname)
	require.Equal(t, "0812000", profile.Phone)
	require.Equal(t, "https://cdn.test/a.png", profile.AvatarURL)
	require.Equal(t, 120, profile.Points)
	require.NotNil(t, profile.JoinDate)
	require.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), *profile.JoinDate)

	var cached domain.UserProfile
	ok, err := cache.Get(context.Background(), storage.KeyFullProfile, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, profile, cached)
}

func TestGetProfileNullOptionalFields(t *testing.T) {
	body := `{
		"meta": {"code": 200, "status": "success", "message": "OK"},
		"data": {"id": 7, "fullname": "Nunu Nugraha", "username": "nunu", "email": "nunu@mail.test", "no_telp": "0812000", "join_date": null, "kmpoin": null}
	}`
	fake := &fakeTransport{body: []byte(body)}
	repo := repository.New(fake, newMemorySecureStore(), newMemoryCacheStore(), zap.NewNop())

	profile, err := repo.GetProfile(context.Background())
	require.NoError(t, err)
	require.Nil(t, profile.JoinDate)
	require.Empty(t, profile.AvatarURL)
	require.Zero(t, profile.Points)
}

func TestGetProfileFailureServesCachedSnapshot(t *testing.T) {
	cache := newMemoryCacheStore()
	cachedProfile := domain.UserProfile{ID: "7", Fullname: "Nunu Nugraha", Username: "nunu", Email: "nunu@mail.test", Points: 50}
	require.NoError(t, cache.Save(context.Background(), storage.KeyFullProfile, cachedProfile))

	fake := &fakeTransport{err: domain.NewTransportError(errors.New("offline"))}
	repo := repository.New(fake, newMemorySecureStore(), cache, zap.NewNop())

	profile, err := repo.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, cachedProfile, profile)
}

func TestGetProfileFailureWithoutCachePropagates(t *testing.T) {
	cause := errors.New("offline")
	fake := &fakeTransport{err: domain.NewTransportError(cause)}
	repo := repository.New(fake, newMemorySecureStore(), newMemoryCacheStore(), zap.NewNop())

	_, err := repo.GetProfile(context.Background())
	require.ErrorIs(t, err, cause)
}

func TestLoginSkipsPersistenceAfterCancellation(t *testing.T) {
	secure := newMemorySecureStore()
	cache := newMemoryCacheStore()
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeTransport{body: []byte(loginBody), beforeReturn: cancel}
	repo := repository.New(fake, secure, cache, zap.NewNop())

	identity, err := repo.Login(ctx, domain.Credentials{Username: "nunu", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "7", identity.ID)
	require.Zero(t, secure.saves)
	require.Zero(t, cache.saves)
}

type fakeTransport struct {
	body         []byte
	err          error
	lastRequest  transport.Request
	beforeReturn func()
}

func (f *fakeTransport) Execute(_ context.Context, req transport.Request) ([]byte, error) {
	f.lastRequest = req
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
	return f.body, f.err
}

type memorySecureStore struct {
	values  map[string]string
	saves   int
	saveErr error
}

func newMemorySecureStore() *memorySecureStore {
	return &memorySecureStore{values: map[string]string{}}
}

func (s *memorySecureStore) Save(key, value string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.values[key] = value
	s.saves++
	return nil
}

func (s *memorySecureStore) Get(key string) (string, error) {
	return s.values[key], nil
}

func (s *memorySecureStore) ClearAll() error {
	s.values = map[string]string{}
	return nil
}

type memoryCacheStore struct {
	values map[string][]byte
	saves  int
}

func newMemoryCacheStore() *memoryCacheStore {
	return &memoryCacheStore{values: map[string][]byte{}}
}

func (s *memoryCacheStore) Save(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = payload
	s.saves++
	return nil
}

func (s *memoryCacheStore) Get(_ context.Context, key string, dest any) (bool, error) {
	payload, ok := s.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (s *memoryCacheStore) Remove(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *memoryCacheStore) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.values[key]
	return ok, nil
}
