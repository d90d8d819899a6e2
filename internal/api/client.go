// Package api wraps the Stolujeme endpoints the CLI uses. Every call goes
// through the session's Executor; methods return the Outcome so the caller
// can forward failures to the notification boundary.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/stolujeme/stolu-cli/internal/session"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

// Default endpoint paths.
const (
	DefaultLoginPath    = "/log-in"
	DefaultLogoutPath   = "/log-out"
	DefaultRegisterPath = "/register"
	DefaultVerifyPath   = "/verify"
	DefaultMealsPath    = "/meals"
)

// ErrMissingToken means a successful login response carried no session token.
var ErrMissingToken = errors.New("api: login response has no session token")

// Paths holds the endpoint paths. Empty fields take the defaults.
type Paths struct {
	Login    string
	Logout   string
	Register string
	Verify   string
	Meals    string
}

func (p Paths) withDefaults() Paths {
	if p.Login == "" {
		p.Login = DefaultLoginPath
	}

	if p.Logout == "" {
		p.Logout = DefaultLogoutPath
	}

	if p.Register == "" {
		p.Register = DefaultRegisterPath
	}

	if p.Verify == "" {
		p.Verify = DefaultVerifyPath
	}

	if p.Meals == "" {
		p.Meals = DefaultMealsPath
	}

	return p
}

// Session is the part of the session controller the client needs.
type Session interface {
	Executor() *session.Executor
	SetCredential(ctx context.Context, token string) error
}

// Client issues API calls on behalf of one session.
type Client struct {
	sessions Session
	exec     *session.Executor
	paths    Paths
	logger   *slog.Logger
}

// New creates a Client.
func New(sessions Session, paths Paths, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		sessions: sessions,
		exec:     sessions.Executor(),
		paths:    paths.withDefaults(),
		logger:   logger,
	}
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

// Login exchanges credentials for a session token and installs it. The error
// is non-nil when the call succeeded but the token could not be installed.
func (c *Client) Login(ctx context.Context, creds Credentials) (session.Outcome, error) {
	out := c.post(ctx, c.paths.Login, creds)
	if !out.OK() {
		return out, nil
	}

	token := out.Success.Lookup("session.token").String()
	if token == "" {
		return out, ErrMissingToken
	}

	c.logger.Debug("login succeeded", slog.Int("token_length", len(token)))

	if err := c.sessions.SetCredential(ctx, token); err != nil {
		return out, fmt.Errorf("api: installing session: %w", err)
	}

	return out, nil
}

// Logout ends the server session and, on success, clears the local one.
func (c *Client) Logout(ctx context.Context) (session.Outcome, error) {
	out := c.post(ctx, c.paths.Logout, nil)
	if !out.OK() {
		return out, nil
	}

	if err := c.sessions.SetCredential(ctx, ""); err != nil {
		return out, fmt.Errorf("api: clearing session: %w", err)
	}

	return out, nil
}

// Register creates an account. The server emails a verification code.
func (c *Client) Register(ctx context.Context, reg Registration) session.Outcome {
	return c.post(ctx, c.paths.Register, reg)
}

// Verify confirms an account with the emailed code.
func (c *Client) Verify(ctx context.Context, code string) session.Outcome {
	return c.post(ctx, c.paths.Verify, verifyRequest{Code: code})
}

// Get issues a GET to an arbitrary path.
func (c *Client) Get(ctx context.Context, path string) session.Outcome {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.exec.Execute(ctx, func(ctx context.Context, t *transport.Transport) (*transport.Response, error) {
		return t.Get(ctx, path)
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) session.Outcome {
	return c.exec.Execute(ctx, func(ctx context.Context, t *transport.Transport) (*transport.Response, error) {
		return t.Post(ctx, path, payload)
	})
}

func (c *Client) mealPath(mealUUID string, rest ...string) string {
	parts := append([]string{c.paths.Meals, url.PathEscape(mealUUID)}, rest...)

	return strings.Join(parts, "/")
}
