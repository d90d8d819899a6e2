package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for overrides.
const (
	EnvConfig   = "STOLU_CONFIG"
	EnvBaseURL  = "STOLU_API_BASE_URL"
	EnvBackend  = "STOLU_STORAGE_BACKEND"
	EnvLanguage = "STOLU_LANGUAGE"
)

// DotEnvFile is the dotenv file read from the working directory.
const DotEnvFile = ".env"

// envValueLimit caps accepted override lengths.
const envValueLimit = 4096

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // STOLU_CONFIG: override config file path
	BaseURL    string // STOLU_API_BASE_URL: API base URL
	Backend    string // STOLU_STORAGE_BACKEND: credential store backend
	Language   string // STOLU_LANGUAGE: message language
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides(logger *slog.Logger) EnvOverrides {
	if logger == nil {
		logger = slog.Default()
	}

	return EnvOverrides{
		ConfigPath: lookupEnv(EnvConfig, logger),
		BaseURL:    lookupEnv(EnvBaseURL, logger),
		Backend:    lookupEnv(EnvBackend, logger),
		Language:   lookupEnv(EnvLanguage, logger),
	}
}

func lookupEnv(name string, logger *slog.Logger) string {
	v := os.Getenv(name)
	if v == "" {
		return ""
	}

	if len(v) > envValueLimit {
		logger.Warn("ignoring oversized environment variable", slog.String("name", name))
		return ""
	}

	logger.Debug("environment override", slog.String("name", name))

	return v
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv(path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	logger.Debug("loaded dotenv file", slog.String("path", path))

	return nil
}
