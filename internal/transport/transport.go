// Package transport performs single HTTP calls against the API base URL with
// a mutable set of default headers. It never retries and never interprets
// response bodies; a 2xx status returns a *Response, anything else a
// *StatusError, and a call that got no response wraps ErrConnection. A body
// over the buffering limit yields a *BodyTooLargeError whatever the status.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Header names the transport manages.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
)

const (
	defaultUserAgent = "stolu/0.1"
	contentTypeJSON  = "application/json"

	// defaultMaxBodyBytes caps how much of a response body is buffered.
	defaultMaxBodyBytes = 10 << 20
)

// Options configures a Transport. BaseURL is required.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	// RateLimit is the sustained requests-per-second ceiling. Zero disables
	// limiting. Burst defaults to 1 when limiting is enabled.
	RateLimit float64
	Burst     int

	// MaxBodyBytes bounds a buffered response body. A larger body fails the
	// call with a *BodyTooLargeError. Zero means 10 MiB.
	MaxBodyBytes int64

	Logger *slog.Logger
}

// Response is a fully buffered HTTP response.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Transport is safe for concurrent use. Default headers and the bearer
// credential are copied into each request when it is built, so a change is
// visible to every call issued after the change returns.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	maxBody    int64
	logger     *slog.Logger

	mu      sync.RWMutex
	headers http.Header
	token   *oauth2.Token
}

// New creates a Transport.
func New(opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Transport{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		userAgent:  ua,
		limiter:    limiter,
		maxBody:    maxBody,
		logger:     logger,
		headers:    make(http.Header),
	}
}

// BaseURL returns the URL every request path is appended to.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// SetBearer installs token as the bearer credential sent with every request,
// or removes it when token is empty.
func (t *Transport) SetBearer(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.headers.Del(HeaderAuthorization)

	if token == "" {
		t.token = nil
		return
	}

	t.token = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}

// SetDefaultHeader sets a header sent with every request. An empty value
// removes it. Setting Authorization replaces any bearer credential.
func (t *Transport) SetDefaultHeader(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if http.CanonicalHeaderKey(name) == HeaderAuthorization {
		t.token = nil
	}

	if value == "" {
		t.headers.Del(name)
		return
	}

	t.headers.Set(name, value)
}

// DefaultHeader returns the current value of a default header, including
// the Authorization value derived from the bearer credential.
func (t *Transport) DefaultHeader(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token != nil && http.CanonicalHeaderKey(name) == HeaderAuthorization {
		return t.token.Type() + " " + t.token.AccessToken
	}

	return t.headers.Get(name)
}

// Get issues a GET request.
func (t *Transport) Get(ctx context.Context, path string) (*Response, error) {
	return t.Do(ctx, http.MethodGet, path, nil, "")
}

// Post issues a POST request with payload encoded as JSON. A nil payload
// sends no body.
func (t *Transport) Post(ctx context.Context, path string, payload any) (*Response, error) {
	if payload == nil {
		return t.Do(ctx, http.MethodPost, path, nil, "")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: encoding request body: %w", err)
	}

	return t.Do(ctx, http.MethodPost, path, bytes.NewReader(data), contentTypeJSON)
}

// Do executes one HTTP request. The path is appended to the base URL.
// Content-Type is set only when body is non-nil (defaulting to JSON).
func (t *Transport) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s %s: rate limiter: %w", ErrConnection, method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("transport: creating request: %w", err)
	}

	t.mu.RLock()
	req.Header = t.headers.Clone()
	tok := t.token
	t.mu.RUnlock()

	if tok != nil {
		tok.SetAuthHeader(req)
	}

	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set(HeaderUserAgent, t.userAgent)

	if req.Header.Get(HeaderAccept) == "" {
		req.Header.Set(HeaderAccept, contentTypeJSON)
	}

	if body != nil {
		if contentType == "" {
			contentType = contentTypeJSON
		}

		req.Header.Set(HeaderContentType, contentType)
	}

	start := time.Now()

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Debug("request got no response",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("%w: %s %s: %w", ErrConnection, method, path, err)
	}
	defer httpResp.Body.Close()

	// One byte past the cap distinguishes a body that fits exactly.
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: reading body: %w", ErrConnection, method, path, err)
	}

	if int64(len(data)) > t.maxBody {
		t.logger.Warn("response body exceeds limit",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", httpResp.StatusCode),
			slog.Int64("limit", t.maxBody),
			slog.String("request_id", reqID),
		)

		return nil, &BodyTooLargeError{
			Method:     method,
			Path:       path,
			StatusCode: httpResp.StatusCode,
			Limit:      t.maxBody,
		}
	}

	resp := &Response{
		Method:     method,
		Path:       path,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  reqID,
	}

	t.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", reqID),
		slog.Bool("authenticated", req.Header.Get(HeaderAuthorization) != ""),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newStatusError(resp)
	}

	return resp, nil
}

// StatusText returns the status line without the numeric code, falling back
// to the standard text for the code.
func (r *Response) StatusText() string {
	if _, text, ok := strings.Cut(r.Status, " "); ok && text != "" {
		return text
	}

	return http.StatusText(r.StatusCode)
}
