package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "algospace-test", 60, 2, 720)
}

func TestGenerateAndValidateSessionToken(t *testing.T) {
	tm := newTestManager()

	token, err := tm.GenerateSessionToken("user-1", "user@example.com", "candidate")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "candidate", claims.Role)
	assert.Equal(t, ScopeSession, claims.Scope)
	assert.Equal(t, "algospace-test", claims.Issuer)
}

func TestRegistrationTokenHasNoRole(t *testing.T) {
	tm := newTestManager()

	token, err := tm.GenerateRegistrationToken("user-2", "user2@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateTokenWithScope(token, ScopeRegistration)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
}

func TestValidateTokenWithScope_RejectsCrossScope(t *testing.T) {
	tm := newTestManager()

	registration, err := tm.GenerateRegistrationToken("user-3", "user3@example.com")
	require.NoError(t, err)
	profile, err := tm.GenerateProfileToken("user-3", "user3@example.com", "interviewer")
	require.NoError(t, err)
	session, err := tm.GenerateSessionToken("user-3", "user3@example.com", "interviewer")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		scope Scope
	}{
		{"registration token for profile step", registration, ScopeProfile},
		{"registration token as session", registration, ScopeSession},
		{"profile token for role step", profile, ScopeRegistration},
		{"profile token as session", profile, ScopeSession},
		{"session token for role step", session, ScopeRegistration},
		{"session token for profile step", session, ScopeProfile},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tm.ValidateTokenWithScope(tc.token, tc.scope)
			assert.ErrorIs(t, err, ErrWrongScope)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := newTestManager()
	other := NewTokenManager("different-secret", "algospace-test", 60, 2, 720)

	token, err := tm.GenerateSessionToken("user-4", "user4@example.com", "candidate")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	// Zero TTL produces an already-expired token
	tm := NewTokenManager("test-secret", "algospace-test", 0, 0, 0)

	token, err := tm.GenerateSessionToken("user-5", "user5@example.com", "candidate")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := newTestManager()

	_, err := tm.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTimingSafeCompare(t *testing.T) {
	assert.True(t, TimingSafeCompare("abc123", "abc123"))
	assert.False(t, TimingSafeCompare("abc123", "abc124"))
	assert.False(t, TimingSafeCompare("abc123", "abc1234"))
}
