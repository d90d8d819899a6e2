package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as an annotated TOML-like
// summary to w. This powers the "config show" command, giving users
// visibility into the effective values after all override layers have been
// applied.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (file: %s)\n\n", r.Path)

	renderAPISection(ew, &r.API)
	renderStorageSection(ew, &r.Storage)
	renderLoggingSection(ew, &r.Logging)
	renderNetworkSection(ew, &r.Network)
	renderUISection(ew, &r.UI)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAPISection(ew *errWriter, a *APIConfig) {
	ew.printf("[api]\n")
	ew.printf("  base_url      = %q\n", a.BaseURL)
	ew.printf("  login_path    = %q\n", a.LoginPath)
	ew.printf("  logout_path   = %q\n", a.LogoutPath)
	ew.printf("  register_path = %q\n", a.RegisterPath)
	ew.printf("  verify_path   = %q\n", a.VerifyPath)
	ew.printf("  meals_path    = %q\n", a.MealsPath)
	ew.printf("  validate_path = %q\n", a.ValidatePath)

	if a.UserAgent != "" {
		ew.printf("  user_agent    = %q\n", a.UserAgent)
	}

	ew.printf("  timeout       = %q\n", a.Timeout)
	ew.printf("  probe_timeout = %q\n", a.ProbeTimeout)
	ew.printf("\n")
}

func renderStorageSection(ew *errWriter, s *StorageConfig) {
	ew.printf("[storage]\n")
	ew.printf("  backend = %q\n", s.Backend)
	ew.printf("  key     = %q\n", s.Key)

	switch s.Backend {
	case "redis":
		ew.printf("  redis_addr = %q\n", s.RedisAddr)
		ew.printf("  redis_db   = %d\n", s.RedisDB)
	case "memory":
	default:
		ew.printf("  dir     = %q\n", s.Dir)
	}

	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", l.LogLevel)
	ew.printf("  log_format = %q\n", l.LogFormat)
	ew.printf("\n")
}

func renderNetworkSection(ew *errWriter, n *NetworkConfig) {
	ew.printf("[network]\n")

	if n.RateLimit == 0 {
		ew.printf("  rate_limit = 0 # unlimited\n")
	} else {
		ew.printf("  rate_limit = %g\n", n.RateLimit)
	}

	ew.printf("  burst      = %d\n", n.Burst)
	ew.printf("\n")
}

func renderUISection(ew *errWriter, u *UIConfig) {
	ew.printf("[ui]\n")
	ew.printf("  language = %q\n", u.Language)
	ew.printf("  color    = %q\n", u.Color)
	ew.printf("  output   = %q\n", u.Output)
}
