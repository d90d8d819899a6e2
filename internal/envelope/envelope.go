// Package envelope converts raw response bodies into the two uniform shapes
// the API wraps every response in, and back. It is pure: no I/O, no state.
//
// Success on the wire:
//
//	{"timestamp": "...", "success": true, "endpoint": "...", "content": {...}}
//
// Failure on the wire:
//
//	{"timestamp": "...", "success": false, "endpoint": "...",
//	 "error": {"http": "...", "httpCode": 400, "type": "...", "message": "..."}}
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when a body is not a valid envelope.
var ErrMalformed = errors.New("envelope: malformed")

// Success is a normalized success envelope.
type Success struct {
	Timestamp time.Time
	Endpoint  string

	// Content is the decoded payload, never nil.
	Content map[string]any

	// RawContent is the payload as received, "{}" when absent.
	RawContent json.RawMessage
}

// Lookup queries the raw content with a gjson path such as "session.token"
// or "meal.names.0".
func (s *Success) Lookup(path string) gjson.Result {
	return gjson.GetBytes(s.RawContent, path)
}

// ErrorDescriptor is the structured error inside a failure envelope.
type ErrorDescriptor struct {
	HTTP     string    `json:"http"`
	HTTPCode int       `json:"httpCode"`
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
}

// Failure is a normalized failure envelope.
type Failure struct {
	Timestamp time.Time
	Endpoint  string
	Error     ErrorDescriptor
}

// wire is the JSON shape shared by both envelopes.
type wire struct {
	Timestamp json.RawMessage  `json:"timestamp,omitempty"`
	Success   bool             `json:"success"`
	Endpoint  string           `json:"endpoint"`
	Content   json.RawMessage  `json:"content,omitempty"`
	Error     *ErrorDescriptor `json:"error,omitempty"`
}

var emptyObject = json.RawMessage(`{}`)

// DecodeSuccess parses a success body. Missing or null content becomes an
// empty mapping; content that is present must be a JSON object.
func DecodeSuccess(body []byte) (*Success, error) {
	var w wire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw := bytes.TrimSpace(w.Content)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = emptyObject
	}

	content := map[string]any{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("%w: content is not an object: %w", ErrMalformed, err)
	}

	if content == nil {
		content = map[string]any{}
	}

	return &Success{
		Timestamp:  ParseTimestamp(w.Timestamp),
		Endpoint:   w.Endpoint,
		Content:    content,
		RawContent: append(json.RawMessage(nil), raw...),
	}, nil
}

// DecodeFailure parses a failure body. The error descriptor must carry a
// non-empty type.
func DecodeFailure(body []byte) (*Failure, error) {
	var w wire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if w.Error == nil {
		return nil, fmt.Errorf("%w: missing error descriptor", ErrMalformed)
	}

	if w.Error.Type == "" {
		return nil, fmt.Errorf("%w: missing error type", ErrMalformed)
	}

	return &Failure{
		Timestamp: ParseTimestamp(w.Timestamp),
		Endpoint:  w.Endpoint,
		Error:     *w.Error,
	}, nil
}

// NewUnknownFailure synthesizes an UNKNOWN failure for a response whose body
// could not be decoded.
func NewUnknownFailure(endpoint string, statusCode int, status string, message string, now time.Time) *Failure {
	if status == "" {
		status = http.StatusText(statusCode)
	}

	return &Failure{
		Timestamp: now,
		Endpoint:  endpoint,
		Error: ErrorDescriptor{
			HTTP:     status,
			HTTPCode: statusCode,
			Type:     TypeUnknown,
			Message:  message,
		},
	}
}

// EncodeSuccess renders s in wire form. Nil content encodes as {}.
func EncodeSuccess(s *Success) ([]byte, error) {
	content := s.RawContent
	if len(content) == 0 {
		data, err := json.Marshal(s.Content)
		if err != nil {
			return nil, fmt.Errorf("envelope: encoding content: %w", err)
		}

		content = data
	}

	if bytes.Equal(bytes.TrimSpace(content), []byte("null")) {
		content = emptyObject
	}

	return json.Marshal(wire{
		Timestamp: formatTimestamp(s.Timestamp),
		Success:   true,
		Endpoint:  s.Endpoint,
		Content:   content,
	})
}

// EncodeFailure renders f in wire form.
func EncodeFailure(f *Failure) ([]byte, error) {
	desc := f.Error

	return json.Marshal(wire{
		Timestamp: formatTimestamp(f.Timestamp),
		Success:   false,
		Endpoint:  f.Endpoint,
		Error:     &desc,
	})
}
