package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-session/internal/domain"
)

func TestMapStatusCodeTable(t *testing.T) {
	require.Equal(t, domain.AuthInvalidCredentials, domain.MapStatusCode(400).Kind)
	require.Equal(t, domain.AuthInvalidCredentials, domain.MapStatusCode(401).Kind)
	require.Equal(t, domain.AuthAccountBlocked, domain.MapStatusCode(403).Kind)
	require.Equal(t, domain.AuthServerMaintenance, domain.MapStatusCode(500).Kind)
	require.Equal(t, domain.AuthServerMaintenance, domain.MapStatusCode(503).Kind)

	require.Nil(t, domain.MapStatusCode(200))
	require.Nil(t, domain.MapStatusCode(404))
	require.Nil(t, domain.MapStatusCode(422))
}

func TestCustomErrorCarriesMessageVerbatim(t *testing.T) {
	err := domain.NewCustomError("Password Salah Bro")
	require.Equal(t, "Password Salah Bro", err.Error())
}

func TestFamiliesStayDistinct(t *testing.T) {
	business := domain.NewAuthError(domain.AuthInvalidCredentials)
	infra := domain.NewTransportError(errors.New("offline"))

	_, ok := domain.AsInfraError(business)
	require.False(t, ok)
	_, ok = domain.AsAuthError(infra)
	require.False(t, ok)
}

func TestAsAuthErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", domain.NewAuthError(domain.AuthAccountBlocked))

	authErr, ok := domain.AsAuthError(wrapped)
	require.True(t, ok)
	require.Equal(t, domain.AuthAccountBlocked, authErr.Kind)
}

func TestInfraErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := domain.NewTransportError(cause)
	require.ErrorIs(t, err, cause)
}
