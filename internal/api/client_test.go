package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolujeme/stolu-cli/internal/envelope"
	"github.com/stolujeme/stolu-cli/internal/session"
	"github.com/stolujeme/stolu-cli/internal/tokenstore"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

const (
	mealID  = "6f1c1f4e-2b7a-4c63-9d8e-1a2b3c4d5e6f"
	photoID = "0b9e4c1a-5d6f-4e7a-8b9c-0d1e2f3a4b5c"
)

func success(w http.ResponseWriter, endpoint, content string) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"timestamp":"2024-03-01T12:00:00Z","success":true,"endpoint":%q,"content":%s}`, endpoint, content)
}

func failure(w http.ResponseWriter, code int, endpoint string, typ envelope.ErrorType) {
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"timestamp":"2024-03-01T12:00:00Z","success":false,"endpoint":%q,"error":{"http":%q,"httpCode":%d,"type":%q,"message":""}}`,
		endpoint, http.StatusText(code), code, typ)
}

// fakeServer mimics the API: "T1" is the only valid token.
type fakeServer struct {
	t      *testing.T
	logins atomic.Int32
	logout atomic.Int32
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authed := r.Header.Get("Authorization") == "Bearer T1"

	switch r.URL.Path {
	case "/test-auth":
		if authed {
			success(w, r.URL.Path, `{}`)
			return
		}

		failure(w, http.StatusUnauthorized, r.URL.Path, envelope.TypeAuthenticationInvalid)

	case "/log-in":
		f.logins.Add(1)

		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "secret" {
			failure(w, http.StatusUnauthorized, r.URL.Path, "CREDENTIALS_INVALID")
			return
		}

		if creds.Email == "tokenless@example.com" {
			success(w, r.URL.Path, `{"session":{}}`)
			return
		}

		success(w, r.URL.Path, `{"session":{"token":"T1"}}`)

	case "/log-out":
		f.logout.Add(1)

		if !authed {
			failure(w, http.StatusUnauthorized, r.URL.Path, envelope.TypeAuthenticationInvalid)
			return
		}

		success(w, r.URL.Path, `{}`)

	case "/register":
		var reg Registration
		_ = json.NewDecoder(r.Body).Decode(&reg)

		if reg.Name == "taken" {
			failure(w, http.StatusConflict, r.URL.Path, envelope.TypeNameNotUnique)
			return
		}

		success(w, r.URL.Path, `{}`)

	case "/verify":
		var req verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(f.t, "abc123", req.Code)
		success(w, r.URL.Path, `{}`)

	case "/meals/" + mealID:
		if !authed {
			failure(w, http.StatusUnauthorized, r.URL.Path, envelope.TypeAuthenticationInvalid)
			return
		}

		success(w, r.URL.Path, `{"meal":{"canteen":"Menza","course":"MAIN","description":null,
			"names":["Svíčková","Beef sirloin"],"photos":["`+photoID+`"],"ratings":{"user":4,"global":3.5}}}`)

	case "/meals/" + photoID:
		failure(w, http.StatusNotFound, r.URL.Path, envelope.TypeMealUUIDInvalid)

	case "/meals/" + mealID + "/photos/" + photoID + "/view":
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))

	default:
		failure(w, http.StatusNotFound, r.URL.Path, "NOT_FOUND")
	}
}

func newTestClient(t *testing.T) (*Client, *session.Controller, *fakeServer, *tokenstore.MemoryStore) {
	t.Helper()

	fake := &fakeServer{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	tr := transport.New(transport.Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	ctrl := session.NewController(tr, store, session.Options{ProbeTimeout: 2 * time.Second}, nil)
	t.Cleanup(ctrl.Wait)

	return New(ctrl, Paths{}, nil), ctrl, fake, store
}

func TestLogin_InstallsToken(t *testing.T) {
	c, ctrl, _, store := newTestClient(t)

	out, err := c.Login(context.Background(), Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	require.True(t, out.OK())

	assert.Equal(t, "T1", ctrl.Credential())
	ctrl.Wait()
	assert.Equal(t, "T1", ctrl.Credential())

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T1", stored)
}

func TestLogin_WrongPassword(t *testing.T) {
	c, ctrl, _, _ := newTestClient(t)

	out, err := c.Login(context.Background(), Credentials{Email: "a@example.com", Password: "nope"})
	require.NoError(t, err)
	assert.Equal(t, envelope.ErrorType("CREDENTIALS_INVALID"), out.ErrorType())
	assert.False(t, ctrl.Authenticated())
}

func TestLogin_MissingToken(t *testing.T) {
	c, ctrl, _, _ := newTestClient(t)

	out, err := c.Login(context.Background(), Credentials{Email: "tokenless@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.True(t, out.OK())
	assert.False(t, ctrl.Authenticated())
}

func TestLogout(t *testing.T) {
	c, ctrl, fake, store := newTestClient(t)

	_, err := c.Login(context.Background(), Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	ctrl.Wait()

	out, err := c.Logout(context.Background())
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.False(t, ctrl.Authenticated())
	assert.False(t, store.Present())
	assert.Equal(t, int32(1), fake.logout.Load())
}

func TestLogout_FailureKeepsSessionUnlessAuthInvalid(t *testing.T) {
	c, ctrl, _, _ := newTestClient(t)

	// An anonymous logout is rejected with AUTHENTICATION_INVALID; the
	// session is already anonymous so nothing changes.
	out, err := c.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, envelope.TypeAuthenticationInvalid, out.ErrorType())
	assert.False(t, ctrl.Authenticated())
}

func TestRegister(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	out := c.Register(context.Background(), Registration{Name: "new", Email: "n@example.com", Password: "pw"})
	assert.True(t, out.OK())

	out = c.Register(context.Background(), Registration{Name: "taken", Email: "t@example.com", Password: "pw"})
	assert.Equal(t, envelope.TypeNameNotUnique, out.ErrorType())
}

func TestVerify(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	assert.True(t, c.Verify(context.Background(), "abc123").OK())
}

func TestGet_PrefixesSlash(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	out := c.Get(context.Background(), "test-auth")
	assert.Equal(t, envelope.TypeAuthenticationInvalid, out.ErrorType())
	assert.Equal(t, "/test-auth", out.Failure.Endpoint)
}

func TestMeal(t *testing.T) {
	c, ctrl, _, _ := newTestClient(t)

	_, err := c.Login(context.Background(), Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	ctrl.Wait()

	meal, out, err := c.Meal(context.Background(), mealID)
	require.NoError(t, err)
	require.True(t, out.OK())
	assert.Equal(t, &Meal{
		UUID:         mealID,
		Canteen:      "Menza",
		Course:       "MAIN",
		Names:        []string{"Svíčková", "Beef sirloin"},
		Photos:       []string{photoID},
		UserRating:   4,
		GlobalRating: 3.5,
	}, meal)
	assert.Equal(t, "Svíčková", meal.Name())

	data, out, err := c.MealPhoto(context.Background(), mealID, photoID)
	require.NoError(t, err)
	require.True(t, out.OK())
	assert.Equal(t, []byte("\x89PNG"), data)
}

func TestMeal_NotFound(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	meal, out, err := c.Meal(context.Background(), photoID)
	require.NoError(t, err)
	assert.Nil(t, meal)
	assert.True(t, IsNotFound(out))
}

func TestMeal_AnonymousIsRejected(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	meal, out, err := c.Meal(context.Background(), mealID)
	require.NoError(t, err)
	assert.Nil(t, meal)
	assert.Equal(t, envelope.TypeAuthenticationInvalid, out.ErrorType())
}

func TestMeal_InvalidUUID(t *testing.T) {
	c, _, _, _ := newTestClient(t)

	_, _, err := c.Meal(context.Background(), "../../log-out")
	assert.ErrorIs(t, err, ErrInvalidUUID)

	_, _, err = c.MealPhoto(context.Background(), mealID, "nope")
	assert.ErrorIs(t, err, ErrInvalidUUID)
}

func TestMeal_NameEmpty(t *testing.T) {
	assert.Empty(t, (&Meal{}).Name())
}
