package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrConnection marks calls that produced no HTTP response at all: DNS
// failures, refused connections, timeouts, TLS errors, cancellation.
var ErrConnection = errors.New("transport: no response")

// ErrBodyTooLarge marks a response whose body exceeded the buffering limit.
var ErrBodyTooLarge = errors.New("transport: response body too large")

// BodyTooLargeError is returned when the server answered but its body was
// larger than the transport buffers. Nothing of the body is returned.
type BodyTooLargeError struct {
	Method     string
	Path       string
	StatusCode int
	Limit      int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("transport: %s %s: HTTP %d body exceeds %d bytes", e.Method, e.Path, e.StatusCode, e.Limit)
}

func (e *BodyTooLargeError) Unwrap() error {
	return ErrBodyTooLarge
}

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, transport.ErrUnauthorized) to check.
var (
	ErrBadRequest   = errors.New("transport: bad request")
	ErrUnauthorized = errors.New("transport: unauthorized")
	ErrForbidden    = errors.New("transport: forbidden")
	ErrNotFound     = errors.New("transport: not found")
	ErrConflict     = errors.New("transport: conflict")
	ErrThrottled    = errors.New("transport: throttled")
	ErrServerError  = errors.New("transport: server error")
	ErrHTTPStatus   = errors.New("transport: unexpected status")
)

// StatusError is returned for every non-2xx response. The response (with its
// fully read body) is kept so the caller can decode the server's error
// envelope.
type StatusError struct {
	Response *Response
	Err      error // sentinel, for errors.Is()
}

func newStatusError(resp *Response) *StatusError {
	return &StatusError{Response: resp, Err: classifyStatus(resp.StatusCode)}
}

func (e *StatusError) Error() string {
	r := e.Response
	if r.RequestID != "" {
		return fmt.Sprintf("transport: %s %s: HTTP %d (request-id: %s)", r.Method, r.Path, r.StatusCode, r.RequestID)
	}

	return fmt.Sprintf("transport: %s %s: HTTP %d", r.Method, r.Path, r.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrHTTPStatus
	}
}
