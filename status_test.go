package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolujeme/stolu-cli/internal/config"
)

func testCLIContext() *CLIContext {
	cfg := config.DefaultConfig()

	return &CLIContext{Cfg: &config.Resolved{Config: *cfg}}
}

func TestBuildStatusReport_Anonymous(t *testing.T) {
	r := buildStatusReport(testCLIContext(), "", false, time.Now())

	assert.Equal(t, sessionStateAnonymous, r.State)
	assert.Empty(t, r.Token)
	assert.Len(t, r.Rows(), 4)
}

func TestBuildStatusReport_JWT(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	r := buildStatusReport(testCLIContext(), token, true, now)

	assert.Equal(t, sessionStateValid, r.State)
	assert.Equal(t, "jwt", r.TokenFormat)
	assert.Equal(t, "user-42", r.Subject)
	assert.True(t, r.Expired)
	assert.NotContains(t, r.Token, token[8:len(token)-8])
}

func TestBuildStatusReport_Rejected(t *testing.T) {
	r := buildStatusReport(testCLIContext(), "opaque-token", false, time.Now())

	assert.Equal(t, sessionStateRejected, r.State)
	assert.Equal(t, "opaque", r.TokenFormat)
}
