package session

import (
	"errors"
	"fmt"

	"github.com/stolujeme/stolu-cli/internal/envelope"
)

// State is the two-valued result of a call.
type State string

// Call states.
const (
	StateSuccess State = "success"
	StateError   State = "error"
)

// ErrCallFailed is wrapped by every error produced from a failed Outcome.
var ErrCallFailed = errors.New("session: call failed")

// Outcome is the uniform result of Executor.Execute. Exactly one of the two
// states is set. Success is non-nil when State is StateSuccess. Failure is
// non-nil for every error except a call that got no response at all.
type Outcome struct {
	State   State
	Success *envelope.Success
	Failure *envelope.Failure

	// Cause is the underlying transport or decoding error, nil on success.
	Cause error
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.State == StateSuccess
}

// HasEnvelope reports whether a response envelope is attached.
func (o Outcome) HasEnvelope() bool {
	return o.Success != nil || o.Failure != nil
}

// ErrorType returns the machine error type for an error outcome: the
// envelope's type, or CONNECTION when no response was received. It returns
// "" for success.
func (o Outcome) ErrorType() envelope.ErrorType {
	if o.OK() {
		return ""
	}

	if o.Failure == nil {
		return envelope.TypeConnection
	}

	return o.Failure.Error.Type
}

// AsError converts an error outcome into a *CallError. It returns nil for
// success.
func (o Outcome) AsError() error {
	if o.OK() {
		return nil
	}

	ce := &CallError{Type: o.ErrorType(), Cause: o.Cause}
	if o.Failure != nil {
		ce.Endpoint = o.Failure.Endpoint
		ce.HTTPCode = o.Failure.Error.HTTPCode
		ce.Message = o.Failure.Error.Message
	}

	return ce
}

// CallError describes a failed call. errors.Is matches ErrCallFailed and the
// underlying cause.
type CallError struct {
	Type     envelope.ErrorType
	Endpoint string
	HTTPCode int
	Message  string
	Cause    error
}

func (e *CallError) Error() string {
	switch {
	case e.Endpoint != "" && e.Message != "":
		return fmt.Sprintf("session: %s (%s): %s", e.Type, e.Endpoint, e.Message)
	case e.Endpoint != "":
		return fmt.Sprintf("session: %s (%s)", e.Type, e.Endpoint)
	default:
		return fmt.Sprintf("session: %s", e.Type)
	}
}

func (e *CallError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrCallFailed}
	}

	return []error{ErrCallFailed, e.Cause}
}
