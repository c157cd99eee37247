package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)

	assert.NotEqual(t, "1234", hash)
	assert.True(t, VerifyPassword(hash, "1234"))
	assert.False(t, VerifyPassword(hash, "4321"))
	assert.False(t, VerifyPassword("not-a-hash", "1234"))
}

func TestSessionIssueAndValidate(t *testing.T) {
	m, err := NewSessionManager("secret", time.Hour, "repairshop")
	require.NoError(t, err)

	token, expiresAt, err := m.Issue()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, 1, m.Active())
}

func TestSessionRevoke(t *testing.T) {
	m, err := NewSessionManager("secret", time.Hour, "repairshop")
	require.NoError(t, err)

	first, _, err := m.Issue()
	require.NoError(t, err)
	second, _, err := m.Issue()
	require.NoError(t, err)

	claims, err := m.Validate(first)
	require.NoError(t, err)
	m.Revoke(claims.ID)

	_, err = m.Validate(first)
	assert.ErrorIs(t, err, ErrSessionRevoked)
	_, err = m.Validate(second)
	assert.NoError(t, err)

	m.RevokeAll()
	_, err = m.Validate(second)
	assert.ErrorIs(t, err, ErrSessionRevoked)
	assert.Equal(t, 0, m.Active())
}

func TestSessionsDoNotSurviveNewManager(t *testing.T) {
	// a random key per process means tokens from a previous run are rejected
	before, err := NewSessionManager("", time.Hour, "repairshop")
	require.NoError(t, err)
	token, _, err := before.Issue()
	require.NoError(t, err)

	after, err := NewSessionManager("", time.Hour, "repairshop")
	require.NoError(t, err)
	_, err = after.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionRejectsForeignTokens(t *testing.T) {
	m, err := NewSessionManager("secret", time.Hour, "repairshop")
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "x",
		Subject:   "admin",
		Issuer:    "repairshop",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTOTPRoundTrip(t *testing.T) {
	secret, url, err := GenerateTOTP("repairshop", "admin")
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, ValidateTOTP(code, secret))
	assert.False(t, ValidateTOTP("000000", ""))
}
