package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager(
		"test-access-secret-at-least-32-chars!",
		"test-refresh-secret-at-least-32-char!",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := newTestJWTManager()

	pair, tokenID, err := m.GenerateTokenPair("user-123", "dev@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEmpty(t, tokenID)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "agencydesk", claims.Issuer)

	refreshClaims, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
	assert.Equal(t, tokenID, refreshClaims.TokenID)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := newTestJWTManager()
	other := NewJWTManager(
		"completely-different-secret-32-chars!",
		"another-different-secret-32-chars!!!!",
		15*time.Minute,
		7*24*time.Hour,
	)

	pair, _, err := m.GenerateTokenPair("user-123", "dev@example.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTManager_RejectsAccessTokenAsRefresh(t *testing.T) {
	m := newTestJWTManager()

	pair, _, err := m.GenerateTokenPair("user-123", "dev@example.com")
	require.NoError(t, err)

	// Signed with a different secret, so it must not validate.
	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager(
		"test-access-secret-at-least-32-chars!",
		"test-refresh-secret-at-least-32-char!",
		-1*time.Minute,
		-1*time.Minute,
	)

	pair, _, err := m.GenerateTokenPair("user-123", "dev@example.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}
