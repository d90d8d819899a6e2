package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation range constants.
const (
	minTimeout      = 1 * time.Second
	maxTimeout      = 10 * time.Minute
	maxProbeTimeout = 2 * time.Minute
)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

// structValidator returns the shared validator. Field names in its errors
// are the toml keys, so messages read "api.base_url" rather than Go names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structCheck = validator.New(validator.WithRequiredStructEnabled())
		structCheck.RegisterTagNameFunc(func(f reflect.StructField) string {
			return tomlName(f)
		})
	})

	return structCheck
}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateTags(cfg)...)
	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)

	return errors.Join(errs...)
}

// ValidateResolved checks constraints that only make sense after the
// override chain has been applied.
func ValidateResolved(cfg *Config) error {
	var errs []error

	// Relative paths would resolve differently depending on cwd.
	if needsDir(cfg.Storage.Backend) && !filepath.IsAbs(cfg.Storage.Dir) {
		errs = append(errs, fmt.Errorf("storage.dir: must be absolute after expansion, got %q", cfg.Storage.Dir))
	}

	return errors.Join(errs...)
}

func needsDir(backend string) bool {
	switch backend {
	case "file", "sqlite", "badger":
		return true
	default:
		return false
	}
}

// validateTags runs the struct-tag rules and converts each failure into a
// "section.key: ..." error.
func validateTags(cfg *Config) []error {
	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: %s", fieldPath(fe), describe(fe)))
	}

	return errs
}

// fieldPath strips the root type from the namespace: "Config.api.base_url"
// becomes "api.base_url".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}

	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of %s; got %v", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "http_url":
		return fmt.Sprintf("must be an http or https URL, got %q", fe.Value())
	case "startswith":
		return fmt.Sprintf("must start with %q, got %q", fe.Param(), fe.Value())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q, got %q", fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("must be host:port, got %q", fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q check, got %v", fe.Tag(), fe.Value())
	}
}

func validateAPI(a *APIConfig) []error {
	var errs []error

	errs = append(errs, validateDurationRange("api.timeout", a.Timeout, minTimeout, maxTimeout)...)
	errs = append(errs, validateDurationRange("api.probe_timeout", a.ProbeTimeout, minTimeout, maxProbeTimeout)...)

	return errs
}

func validateStorage(s *StorageConfig) []error {
	var errs []error

	if s.Backend == "redis" && s.RedisAddr == "" {
		errs = append(errs, errors.New("storage.redis_addr: required when storage.backend is \"redis\""))
	}

	if s.Key == "." || s.Key == ".." {
		errs = append(errs, fmt.Errorf("storage.key: %q is not a valid key", s.Key))
	}

	return errs
}

func validateDurationRange(field, value string, lo, hi time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < lo || d > hi {
		return []error{fmt.Errorf("%s: must be between %s and %s, got %s", field, lo, hi, value)}
	}

	return nil
}

// TimeoutDuration returns the parsed API timeout. The value has been validated, so a
// parse failure falls back to the default.
func (a APIConfig) TimeoutDuration() time.Duration {
	return parseOr(a.Timeout, defaultTimeout)
}

// ProbeTimeoutDuration returns the parsed validation probe timeout.
func (a APIConfig) ProbeTimeoutDuration() time.Duration {
	return parseOr(a.ProbeTimeout, defaultProbeTimeout)
}

func parseOr(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	d, _ := time.ParseDuration(fallback)

	return d
}
