package tokeninfo

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return tok
}

func TestInspect_Empty(t *testing.T) {
	assert.Equal(t, Info{}, Inspect("", time.Now()))
}

func TestInspect_Opaque(t *testing.T) {
	info := Inspect("3f2a9c1e-opaque-session", time.Now())
	assert.Equal(t, FormatOpaque, info.Format)
	assert.Equal(t, 23, info.Length)
	assert.False(t, info.Expired)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestInspect_JWT(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tok := signed(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "stolujeme",
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	info := Inspect(tok, now)
	assert.Equal(t, FormatJWT, info.Format)
	assert.Equal(t, "user-42", info.Subject)
	assert.Equal(t, "stolujeme", info.Issuer)
	assert.True(t, info.IssuedAt.Equal(now.Add(-time.Hour)))
	assert.True(t, info.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.False(t, info.Expired)

	assert.True(t, Inspect(tok, now.Add(2*time.Hour)).Expired)
}

func TestInspect_JWTWithoutExpiry(t *testing.T) {
	info := Inspect(signed(t, jwt.RegisteredClaims{Subject: "s"}), time.Now())
	assert.Equal(t, FormatJWT, info.Format)
	assert.False(t, info.Expired)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "********", Redact("short"))
	assert.Equal(t, "abcd…wxyz", Redact("abcdefghijklmnopqrstuvwxyz"))
}
