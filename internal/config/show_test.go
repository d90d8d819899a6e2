package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEffective_Defaults(t *testing.T) {
	r := &Resolved{Config: *DefaultConfig(), Path: "/etc/stolu/config.toml"}
	r.Storage.Dir = "/data"

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(r, &buf))

	out := buf.String()
	assert.Contains(t, out, "/etc/stolu/config.toml")
	for _, section := range []string{"[api]", "[storage]", "[logging]", "[network]", "[ui]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, `base_url      = "http://localhost:8080"`)
	assert.Contains(t, out, `dir     = "/data"`)
	assert.Contains(t, out, "# unlimited")
	assert.NotContains(t, out, "redis_addr")
}

func TestRenderEffective_Redis(t *testing.T) {
	r := &Resolved{Config: *DefaultConfig()}
	r.Storage.Backend = "redis"
	r.Storage.RedisDB = 3
	r.Network.RateLimit = 4

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(r, &buf))

	out := buf.String()
	assert.Contains(t, out, `redis_addr = "localhost:6379"`)
	assert.Contains(t, out, "redis_db   = 3")
	assert.Contains(t, out, "rate_limit = 4")
	assert.NotContains(t, out, "dir     =")
}

type failWriter struct{ calls int }

func (f *failWriter) Write([]byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestRenderEffective_WriteError(t *testing.T) {
	w := &failWriter{}
	r := &Resolved{Config: *DefaultConfig()}

	err := RenderEffective(r, w)
	require.Error(t, err)
	assert.Equal(t, 1, w.calls)
}
