package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/stolujeme/stolu-cli/internal/envelope"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

// errNoResponse is the cause recorded when a RequestFunc returns neither a
// response nor an error.
var errNoResponse = fmt.Errorf("%w: request returned nothing", transport.ErrConnection)

// maxSynthesizedMessage bounds how much of an undecodable body is copied into
// a synthesized failure message.
const maxSynthesizedMessage = 256

// RequestFunc performs exactly one transport call.
type RequestFunc func(ctx context.Context, t *transport.Transport) (*transport.Response, error)

// CredentialSetter is the part of the session the executor needs: a way to
// clear the credential when the server rejects it.
type CredentialSetter interface {
	SetCredential(ctx context.Context, token string) error
}

// Executor is the single path by which requests reach the server. It
// normalizes every result into an Outcome and clears the session when the
// server reports the credential as invalid. It neither retries nor
// serializes calls.
type Executor struct {
	transport *transport.Transport
	sessions  CredentialSetter
	logger    *slog.Logger

	// nowFunc stamps synthesized envelopes. Tests override it.
	nowFunc func() time.Time

	calls atomic.Int64
}

// NewExecutor creates an Executor. sessions may be nil, in which case
// invalidating error types are surfaced without a local side effect.
func NewExecutor(t *transport.Transport, sessions CredentialSetter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		transport: t,
		sessions:  sessions,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Transport returns the shared transport.
func (e *Executor) Transport() *transport.Transport {
	return e.transport
}

// Calls returns how many requests have been executed.
func (e *Executor) Calls() int64 {
	return e.calls.Load()
}

// Execute runs fn and normalizes its result.
func (e *Executor) Execute(ctx context.Context, fn RequestFunc) Outcome {
	resp, err := e.run(ctx, fn)
	if err != nil {
		return e.failed(ctx, err)
	}

	if len(resp.Body) == 0 {
		return Outcome{State: StateSuccess, Success: e.emptySuccess(resp)}
	}

	s, err := envelope.DecodeSuccess(resp.Body)
	if err != nil {
		// The server accepted the call; only its content is unusable.
		e.logger.Warn("undecodable success body, treating content as empty",
			slog.String("method", resp.Method),
			slog.String("path", resp.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)

		return Outcome{State: StateSuccess, Success: e.emptySuccess(resp)}
	}

	return Outcome{State: StateSuccess, Success: s}
}

// Fetch runs fn for an endpoint that returns raw bytes rather than an
// envelope (photo downloads). Success carries the body; failures are
// classified exactly like Execute, including session invalidation.
func (e *Executor) Fetch(ctx context.Context, fn RequestFunc) ([]byte, Outcome) {
	resp, err := e.run(ctx, fn)
	if err != nil {
		return nil, e.failed(ctx, err)
	}

	s := e.emptySuccess(resp)
	s.Content["contentType"] = resp.Header.Get("Content-Type")
	s.Content["size"] = len(resp.Body)

	return resp.Body, Outcome{State: StateSuccess, Success: s}
}

func (e *Executor) run(ctx context.Context, fn RequestFunc) (*transport.Response, error) {
	e.calls.Add(1)

	resp, err := fn(ctx, e.transport)
	if err == nil && resp == nil {
		err = errNoResponse
	}

	return resp, err
}

// failed classifies a request error. A *transport.StatusError means the
// server answered with an error; an oversized body is a synthesized failure;
// anything else means no response was received.
func (e *Executor) failed(ctx context.Context, err error) Outcome {
	var tooLarge *transport.BodyTooLargeError
	if errors.As(err, &tooLarge) {
		f := envelope.NewUnknownFailure(tooLarge.Path, http.StatusBadGateway,
			http.StatusText(http.StatusBadGateway), tooLarge.Error(), e.nowFunc())

		return Outcome{State: StateError, Failure: f, Cause: err}
	}

	var se *transport.StatusError
	if !errors.As(err, &se) {
		e.logger.Debug("call got no response", slog.String("error", err.Error()))

		return Outcome{State: StateError, Cause: err}
	}

	resp := se.Response

	f, decodeErr := envelope.DecodeFailure(resp.Body)
	if decodeErr != nil {
		e.logger.Debug("undecodable error body",
			slog.String("path", resp.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("error", decodeErr.Error()),
		)

		f = e.synthesize(resp, decodeErr)
	}

	if envelope.ActionFor(f.Error.Type) == envelope.ActionInvalidateSession && e.sessions != nil {
		e.logger.Info("server rejected credential, clearing session",
			slog.String("path", resp.Path),
			slog.String("type", string(f.Error.Type)),
		)

		// The clear must outlive a caller that gives up right after the call.
		if clearErr := e.sessions.SetCredential(context.WithoutCancel(ctx), ""); clearErr != nil {
			e.logger.Warn("clearing session failed", slog.String("error", clearErr.Error()))
		}
	}

	return Outcome{State: StateError, Failure: f, Cause: err}
}

func (e *Executor) synthesize(resp *transport.Response, cause error) *envelope.Failure {
	msg := string(resp.Body)
	if len(msg) > maxSynthesizedMessage {
		msg = msg[:maxSynthesizedMessage]
	}

	if msg == "" {
		msg = cause.Error()
	}

	return envelope.NewUnknownFailure(resp.Path, resp.StatusCode, resp.StatusText(), msg, e.nowFunc())
}

func (e *Executor) emptySuccess(resp *transport.Response) *envelope.Success {
	return &envelope.Success{
		Timestamp:  e.nowFunc(),
		Endpoint:   resp.Path,
		Content:    map[string]any{},
		RawContent: []byte("{}"),
	}
}
