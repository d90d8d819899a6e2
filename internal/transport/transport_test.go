package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *Transport {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
}

func TestSetBearer_SetsAndClearsHeader(t *testing.T) {
	var got atomic.Value

	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get(HeaderAuthorization))
		w.WriteHeader(http.StatusOK)
	})

	tr.SetBearer("abc")
	assert.Equal(t, "Bearer abc", tr.DefaultHeader(HeaderAuthorization))

	_, err := tr.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got.Load())

	tr.SetBearer("")
	assert.Empty(t, tr.DefaultHeader(HeaderAuthorization))

	_, err = tr.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestSetDefaultHeader_AuthorizationReplacesBearer(t *testing.T) {
	var got atomic.Value

	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get(HeaderAuthorization))
		w.WriteHeader(http.StatusOK)
	})

	tr.SetBearer("abc")
	tr.SetDefaultHeader("authorization", "Basic dXNlcg==")
	assert.Equal(t, "Basic dXNlcg==", tr.DefaultHeader(HeaderAuthorization))

	_, err := tr.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcg==", got.Load())

	tr.SetBearer("xyz")
	assert.Equal(t, "Bearer xyz", tr.DefaultHeader(HeaderAuthorization))

	_, err = tr.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "Bearer xyz", got.Load())
}

func TestDo_BodyOverDefaultLimit(t *testing.T) {
	var size atomic.Int64

	tr := newTestTransport(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderContentType, "image/jpeg")
		_, _ = w.Write(make([]byte, size.Load()))
	})

	size.Store(defaultMaxBodyBytes)

	resp, err := tr.Get(context.Background(), "/photo")
	require.NoError(t, err)
	assert.Len(t, resp.Body, defaultMaxBodyBytes)

	size.Store(defaultMaxBodyBytes + 1<<20)

	resp, err = tr.Get(context.Background(), "/photo")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.NotErrorIs(t, err, ErrConnection)

	var tooLarge *BodyTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, "/photo", tooLarge.Path)
	assert.Equal(t, http.StatusOK, tooLarge.StatusCode)
	assert.Equal(t, int64(defaultMaxBodyBytes), tooLarge.Limit)
}

func TestDo_OversizedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	tr := New(Options{BaseURL: srv.URL, MaxBodyBytes: 16})

	_, err := tr.Get(context.Background(), "/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestDo_StandardHeaders(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/log-in", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get(HeaderContentType))
		assert.Equal(t, "application/json", r.Header.Get(HeaderAccept))
		assert.Equal(t, defaultUserAgent, r.Header.Get(HeaderUserAgent))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, string(body))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	resp, err := tr.Post(context.Background(), "/log-in", map[string]string{"email": "a@b.c", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"success":true}`, string(resp.Body))
	assert.NotEmpty(t, resp.RequestID)
}

func TestDo_NoContentTypeWithoutBody(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(HeaderContentType))
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := tr.Post(context.Background(), "/log-out", nil)
	require.NoError(t, err)
}

func TestDo_UniqueRequestIDs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get(HeaderRequestID)] = true
		mu.Unlock()
	})

	for range 5 {
		_, err := tr.Get(context.Background(), "/")
		require.NoError(t, err)
	}

	assert.Len(t, seen, 5)
}

func TestDo_StatusError(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrThrottled},
		{http.StatusBadGateway, ErrServerError},
		{http.StatusTeapot, ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			tr := newTestTransport(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"success":false}`))
			})

			resp, err := tr.Get(context.Background(), "/thing")
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.NotErrorIs(t, err, ErrConnection)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.Response.StatusCode)
			assert.Equal(t, "/thing", se.Response.Path)
			assert.Equal(t, `{"success":false}`, string(se.Response.Body))
			assert.Contains(t, se.Error(), "HTTP")
		})
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := New(Options{BaseURL: url})

	_, err := tr.Get(context.Background(), "/test-auth")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestDo_ContextCanceled(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tr.Get(ctx, "/slow")
	assert.ErrorIs(t, err, ErrConnection)
}

func TestDo_RateLimit(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tr := New(Options{BaseURL: srv.URL, RateLimit: 20, Burst: 1})

	start := time.Now()

	for range 3 {
		_, err := tr.Get(context.Background(), "/")
		require.NoError(t, err)
	}

	// Two waits of 50ms after the initial burst token.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Bad Gateway", (&Response{Status: "502 Bad Gateway", StatusCode: 502}).StatusText())
	assert.Equal(t, "Not Found", (&Response{StatusCode: 404}).StatusText())
}
