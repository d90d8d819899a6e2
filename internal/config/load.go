package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Debug("config file loaded", slog.String("path", path))

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("no config file, using defaults", slog.String("path", path))
		return DefaultConfig(), nil
	}

	return Load(path, logger)
}

// Resolved is a fully merged configuration plus the file it came from.
type Resolved struct {
	Config

	// Path is the config file consulted, whether or not it existed.
	Path string
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// Callers load the .env file (LoadDotEnv) before reading env.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Resolved, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath, logger)
	if err != nil {
		return nil, err
	}

	// 3. Apply env overrides
	applyOverride(&cfg.API.BaseURL, env.BaseURL)
	applyOverride(&cfg.Storage.Backend, env.Backend)
	applyOverride(&cfg.UI.Language, env.Language)

	// 4. Apply CLI overrides
	applyOverride(&cfg.API.BaseURL, cli.BaseURL)
	applyOverride(&cfg.Storage.Backend, cli.Backend)
	applyOverride(&cfg.UI.Output, cli.Output)

	// 5. Fill run-time defaults
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = DefaultDataDir()
	}

	cfg.Storage.Dir = expandTilde(cfg.Storage.Dir)

	// 6. Validate the final merged result
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	if err := ValidateResolved(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger.Debug("config resolved",
		slog.String("path", cfgPath),
		slog.String("base_url", cfg.API.BaseURL),
		slog.String("backend", cfg.Storage.Backend),
	)

	return &Resolved{Config: *cfg, Path: cfgPath}, nil
}

func applyOverride(field *string, value string) {
	if value != "" {
		*field = value
	}
}

// expandTilde replaces a leading "~/" with the user's home directory.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
