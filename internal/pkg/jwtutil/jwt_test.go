package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("secret", 7*24*time.Hour, "user-1")
	require.NoError(t, err)

	claims, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)

	remaining := claims.Remaining(time.Now())
	assert.Greater(t, remaining, 7*24*time.Hour-time.Minute)
	assert.LessOrEqual(t, remaining, 7*24*time.Hour)
}

func TestTokenIDsAreUnique(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken("secret", time.Hour, "u")
	require.NoError(t, err)
	b, err := GenerateToken("secret", time.Hour, "u")
	require.NoError(t, err)

	ca, err := ParseToken("secret", a)
	require.NoError(t, err)
	cb, err := ParseToken("secret", b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	expired, err := GenerateToken("secret", -time.Second, "u")
	require.NoError(t, err)

	valid, err := GenerateToken("secret", time.Hour, "u")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "u",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"expired", "secret", expired},
		{"wrong secret", "other", valid},
		{"malformed", "secret", "not.a.jwt"},
		{"empty", "secret", ""},
		{"missing expiry", "secret", noExpiry},
		{"missing user", "secret", noUser},
		{"unexpected algorithm", "secret", otherAlg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
	assert.Zero(t, c.Remaining(now))
	assert.Zero(t, (&Claims{}).Remaining(now))
}
