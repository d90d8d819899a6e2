package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stolujeme/stolu-cli/internal/api"
	"github.com/stolujeme/stolu-cli/internal/notify"
	"github.com/stolujeme/stolu-cli/internal/session"
	"github.com/stolujeme/stolu-cli/internal/tokenstore"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

// errNotLoggedIn is returned by commands that need a session when none is
// stored.
var errNotLoggedIn = errors.New("not logged in: run 'stolu login' first")

// errReported marks a failure whose message the notifier already printed.
var errReported = errors.New("reported")

// App wires one process's session: the credential store, the shared
// transport, the session controller, and the API client on top of it.
type App struct {
	Store    tokenstore.Store
	Session  *session.Controller
	Client   *api.Client
	Notifier *notify.Dispatcher

	logger *slog.Logger
}

// newApp opens the configured store, seeds the session from it, and returns
// the assembled App. The caller must Close it so pending validation passes
// finish writing the store.
func newApp(ctx context.Context, cc *CLIContext) (*App, error) {
	cfg := cc.Cfg
	logger := cc.Logger

	store, err := tokenstore.Open(ctx, tokenstore.Options{
		Backend:   cfg.Storage.Backend,
		Dir:       cfg.Storage.Dir,
		Key:       cfg.Storage.Key,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	t := transport.New(transport.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.TimeoutDuration()},
		UserAgent:  cfg.API.UserAgent,
		RateLimit:  cfg.Network.RateLimit,
		Burst:      cfg.Network.Burst,
		Logger:     logger,
	})

	ctrl := session.NewController(t, store, session.Options{
		ValidatePath: cfg.API.ValidatePath,
		ProbeTimeout: cfg.API.ProbeTimeoutDuration(),
	}, logger)

	if err := ctrl.Seed(ctx); err != nil {
		// The session stays anonymous; commands that need it will say so.
		logger.Warn("continuing without stored credential", slog.String("error", err.Error()))
	}

	client := api.New(ctrl, api.Paths{
		Login:    cfg.API.LoginPath,
		Logout:   cfg.API.LogoutPath,
		Register: cfg.API.RegisterPath,
		Verify:   cfg.API.VerifyPath,
		Meals:    cfg.API.MealsPath,
	}, logger)

	return &App{
		Store:    store,
		Session:  ctrl,
		Client:   client,
		Notifier: notify.New(cc.Stderr, cfg.UI.Language, cfg.UI.Color),
		logger:   logger,
	}, nil
}

// Close waits for outstanding validation passes and releases the store.
func (a *App) Close() {
	a.Session.Wait()

	if err := a.Store.Close(); err != nil {
		a.logger.Warn("closing credential store", slog.String("error", err.Error()))
	}
}

// requireAuth refuses to continue when the session is anonymous.
func (a *App) requireAuth() error {
	if !a.Session.Authenticated() {
		return errNotLoggedIn
	}

	return nil
}

// check forwards a failed outcome to the notifier and converts it into an
// error for cobra. It returns nil for success.
func (a *App) check(out session.Outcome) error {
	if out.OK() {
		return nil
	}

	a.Notifier.Notify(out)
	a.logger.Debug("call failed", slog.String("error", out.AsError().Error()))

	return fmt.Errorf("%w: %w", errReported, out.AsError())
}
