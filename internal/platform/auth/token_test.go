package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, exp, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokens_DefaultTTL(t *testing.T) {
	tokens := NewTokens("s", 0)
	_, exp, err := tokens.Issue("u")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, 5*time.Second)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	signed, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(signed)
	assert.Error(t, err)
}

func TestTokens_WrongSecret(t *testing.T) {
	signed, _, err := NewTokens("one", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestTokens_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "panacea",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("test-secret", time.Hour).Verify(unsigned)
	assert.Error(t, err)
}

func TestTokens_Malformed(t *testing.T) {
	_, err := NewTokens("s", time.Hour).Verify("not.a.jwt")
	assert.Error(t, err)
	_, err = NewTokens("s", time.Hour).Verify(strings.Repeat("x", 10))
	assert.Error(t, err)
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}

func TestPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
