// Package session owns the authentication credential and the call path to
// the server.
//
// Controller is the single authority over the credential: it mirrors every
// change into the transport's Authorization header and the token store, then
// re-validates the new value against the server. Executor is the only way
// requests are issued; it turns every result into an Outcome and clears the
// credential when the server rejects it.
//
// The session is an explicit two-state machine, Active(token) and Anonymous.
// Validating Anonymous reconciles storage and stops, so an invalidation
// chain is at most one probe followed by one terminating pass.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stolujeme/stolu-cli/internal/envelope"
	"github.com/stolujeme/stolu-cli/internal/tokenstore"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

// Defaults for Options.
const (
	DefaultValidatePath = "/test-auth"
	DefaultProbeTimeout = 10 * time.Second
)

// ErrAlreadySeeded is returned by a second call to Seed.
var ErrAlreadySeeded = errors.New("session: already seeded")

// Options configures a Controller.
type Options struct {
	// ValidatePath is the side-effect-free GET endpoint used to probe the
	// credential.
	ValidatePath string

	// ProbeTimeout bounds each validation probe.
	ProbeTimeout time.Duration
}

// Change is delivered to subscribers after every credential change.
type Change struct {
	Authenticated    bool
	WasAuthenticated bool
}

// Stats are diagnostic counters.
type Stats struct {
	// ValidationPasses counts every run of the validation routine,
	// including Anonymous passes that make no request.
	ValidationPasses int64

	// Probes counts validation requests sent to the server.
	Probes int64
}

// Controller holds the session credential. It is safe for concurrent use.
type Controller struct {
	transport *transport.Transport
	store     tokenstore.Store
	exec      *Executor
	logger    *slog.Logger

	validatePath string
	probeTimeout time.Duration

	mu     sync.Mutex
	st     state
	gen    uint64 // bumped on every transition
	seeded bool
	subs   map[int]func(Change)
	nextID int

	// persistMu serializes store writes so the stored value converges on
	// the latest in-memory state.
	persistMu sync.Mutex

	passes    sync.WaitGroup
	passCount atomic.Int64
	probes    atomic.Int64
	lastProbe atomic.Pointer[Outcome]
}

// NewController creates an anonymous session bound to t and store. Call
// Seed to load a persisted credential.
func NewController(t *transport.Transport, store tokenstore.Store, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.ValidatePath == "" {
		opts.ValidatePath = DefaultValidatePath
	}

	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}

	c := &Controller{
		transport:    t,
		store:        store,
		logger:       logger,
		validatePath: opts.ValidatePath,
		probeTimeout: opts.ProbeTimeout,
		st:           anonymous{},
		subs:         make(map[int]func(Change)),
	}

	c.exec = NewExecutor(t, c, logger)
	t.SetBearer("")

	return c
}

// Executor returns the executor bound to this session.
func (c *Controller) Executor() *Executor {
	return c.exec
}

// Credential returns the current token, or "" when anonymous.
func (c *Controller) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.st.credential()
}

// Authenticated reports whether a credential is held.
func (c *Controller) Authenticated() bool {
	return c.Credential() != ""
}

// Seed loads the persisted credential, applies it, and schedules the initial
// validation pass. It may be called once. If the store cannot be read the
// session stays anonymous, no pass is scheduled, and the error is returned.
func (c *Controller) Seed(ctx context.Context) error {
	c.mu.Lock()
	if c.seeded {
		c.mu.Unlock()
		return ErrAlreadySeeded
	}

	c.seeded = true
	c.mu.Unlock()

	token, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("reading stored credential failed, starting anonymous",
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("session: seeding: %w", err)
	}

	c.mu.Lock()
	prev, gen := c.transition(stateFor(token))
	c.passes.Add(1)
	c.mu.Unlock()

	c.logger.Debug("session seeded",
		slog.Bool("authenticated", token != ""),
		slog.Int("token_length", len(token)),
	)

	c.publish(Change{Authenticated: token != "", WasAuthenticated: prev.credential() != ""})

	go c.runPass(context.WithoutCancel(ctx), gen)

	return nil
}

// SetCredential replaces the credential. On return the transport header
// already reflects the new value and the store has been written; a
// validation pass is then scheduled in the background. Setting the current
// value again does nothing. The returned error reports a failed store
// write; the in-memory change and the header update happen regardless.
func (c *Controller) SetCredential(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.st.credential() == token {
		c.mu.Unlock()
		return nil
	}

	prev, gen := c.transition(stateFor(token))
	c.passes.Add(1)
	c.mu.Unlock()

	c.logger.Info("session credential changed",
		slog.Bool("authenticated", token != ""),
		slog.Bool("was_authenticated", prev.credential() != ""),
	)

	err := c.reconcile(ctx)

	c.publish(Change{Authenticated: token != "", WasAuthenticated: prev.credential() != ""})

	go c.runPass(context.WithoutCancel(ctx), gen)

	return err
}

// Validate runs one validation pass synchronously on the current credential.
// It returns the probe outcome, or nil when the session is anonymous and no
// request was made. The error reports a failed store write.
func (c *Controller) Validate(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	return c.validate(ctx, gen)
}

// Wait blocks until every scheduled validation pass, including passes
// scheduled by passes, has finished.
func (c *Controller) Wait() {
	c.passes.Wait()
}

// Subscribe registers fn to be called after every credential change. The
// returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Change)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.subs, id)
	}
}

// Stats returns the diagnostic counters.
func (c *Controller) Stats() Stats {
	return Stats{
		ValidationPasses: c.passCount.Load(),
		Probes:           c.probes.Load(),
	}
}

// LastProbe returns the outcome of the most recent validation probe, or nil
// if none has been sent.
func (c *Controller) LastProbe() *Outcome {
	return c.lastProbe.Load()
}

// transition installs next and updates the transport header before the
// caller releases c.mu, so no request built after the change can carry the
// old header. Must be called with c.mu held.
func (c *Controller) transition(next state) (prev state, gen uint64) {
	prev = c.st
	c.st = next
	c.gen++
	c.transport.SetBearer(next.credential())

	return prev, c.gen
}

func (c *Controller) runPass(ctx context.Context, gen uint64) {
	defer c.passes.Done()

	if _, err := c.validate(ctx, gen); err != nil {
		c.logger.Warn("validation pass failed to reconcile storage",
			slog.String("error", err.Error()),
		)
	}
}

// validate is the validation routine. gen identifies the transition the pass
// was scheduled for.
func (c *Controller) validate(ctx context.Context, gen uint64) (*Outcome, error) {
	c.passCount.Add(1)

	c.mu.Lock()
	st := c.st
	current := c.gen
	c.mu.Unlock()

	switch st.(type) {
	case anonymous:
		c.logger.Debug("validation pass: anonymous, nothing to probe")
		return nil, c.reconcile(ctx)

	case active:
		if gen != current {
			c.logger.Debug("validation pass superseded",
				slog.Uint64("generation", gen),
				slog.Uint64("current", current),
			)

			return nil, nil
		}

		persistErr := c.reconcile(ctx)

		out := c.probe(ctx)
		if out.OK() {
			c.logger.Debug("credential accepted")
			return &out, persistErr
		}

		c.mu.Lock()
		stale := c.gen != gen
		_, cleared := c.st.(anonymous)
		c.mu.Unlock()

		if stale {
			if cleared && envelope.ActionFor(out.ErrorType()) == envelope.ActionInvalidateSession {
				c.logger.Info("credential rejected by server, session cleared",
					slog.String("type", string(out.ErrorType())),
				)

				return &out, persistErr
			}

			// The credential changed while the probe was in flight; the
			// new value has its own pass.
			c.logger.Debug("probe failed for a replaced credential, ignoring",
				slog.String("type", string(out.ErrorType())),
			)

			return &out, persistErr
		}

		c.logger.Info("credential failed validation, clearing",
			slog.String("type", string(out.ErrorType())),
		)

		return &out, errors.Join(persistErr, c.SetCredential(ctx, ""))

	default:
		panic(fmt.Sprintf("session: unknown state %T", st))
	}
}

func (c *Controller) probe(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	c.probes.Add(1)

	out := c.exec.Execute(ctx, func(ctx context.Context, t *transport.Transport) (*transport.Response, error) {
		return t.Get(ctx, c.validatePath)
	})

	c.lastProbe.Store(&out)

	return out
}

// reconcile writes the current in-memory credential to the store.
func (c *Controller) reconcile(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	token := c.Credential()
	if token == "" {
		if err := c.store.Remove(ctx); err != nil {
			return fmt.Errorf("session: removing stored credential: %w", err)
		}

		return nil
	}

	if err := c.store.Save(ctx, token); err != nil {
		return fmt.Errorf("session: storing credential: %w", err)
	}

	return nil
}

func (c *Controller) publish(ch Change) {
	c.mu.Lock()
	fns := make([]func(Change), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
