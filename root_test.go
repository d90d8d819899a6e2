package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolujeme/stolu-cli/internal/config"
)

func TestBuildLogger_DefaultIsWarn(t *testing.T) {
	logger := buildLogger(nil, CLIFlags{}, &bytes.Buffer{})

	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestBuildLogger_ConfigLevel(t *testing.T) {
	logger := buildLogger(&config.LoggingConfig{LogLevel: "info", LogFormat: "text"}, CLIFlags{}, &bytes.Buffer{})

	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_FlagsWin(t *testing.T) {
	cfg := &config.LoggingConfig{LogLevel: "error", LogFormat: "text"}

	verbose := buildLogger(cfg, CLIFlags{Verbose: true}, &bytes.Buffer{})
	assert.True(t, verbose.Enabled(context.Background(), slog.LevelDebug))

	quiet := buildLogger(&config.LoggingConfig{LogLevel: "debug"}, CLIFlags{Quiet: true}, &bytes.Buffer{})
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, quiet.Enabled(context.Background(), slog.LevelError))
}

func TestBuildLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := buildLogger(&config.LoggingConfig{LogLevel: "info", LogFormat: "json"}, CLIFlags{}, &buf)
	logger.Info("hello", slog.String("k", "v"))

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestMustCLIContext(t *testing.T) {
	assert.Panics(t, func() { mustCLIContext(context.Background()) })

	cc := &CLIContext{Flags: CLIFlags{Quiet: true}}
	assert.Same(t, cc, mustCLIContext(withCLIContext(context.Background(), cc)))
}

func TestStatusf_Quiet(t *testing.T) {
	var buf bytes.Buffer

	(&CLIContext{Flags: CLIFlags{Quiet: true}, Stderr: &buf}).Statusf("hidden\n")
	assert.Empty(t, buf.String())

	(&CLIContext{Stderr: &buf}).Statusf("shown %d\n", 1)
	assert.Equal(t, "shown 1\n", buf.String())
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"login", "logout", "register", "verify", "status", "get", "meal", "config"} {
		assert.Contains(t, names, want)
	}

	require.NotNil(t, cmd.PersistentFlags().Lookup("store"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("api"))
}
