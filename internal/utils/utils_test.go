package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "42", "ADMIN", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "42", Role: "ADMIN"}, id)
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken("s3cret", "1", "ADMIN", time.Minute)
	require.NoError(t, err)
	expired, err := NewAccessToken("s3cret", "1", "ADMIN", -time.Minute)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "ADMIN"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "1", "role": "ADMIN", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"s3cret", expired.Token},
		"missing exp":  {"s3cret", noExp},
		"wrong alg":    {"s3cret", hs512},
		"garbage":      {"s3cret", "not-a-token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.raw)
			assert.Error(t, err)
		})
	}
}

func TestNewAccessTokenEmptySecret(t *testing.T) {
	_, err := NewAccessToken("", "1", "ADMIN", time.Minute)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))

	// out of range cost falls back to the default
	hash, err = HashPassword("x", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
