package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nvaldr/shopstack-be/internal/client/api"
	"github.com/nvaldr/shopstack-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	token string

	loginResult *api.LoginResult
	loginErr    error

	signupErr error

	user    models.UserWithShops
	userErr error

	logoutErr    error
	logoutCalled bool
}

func (f *fakeBackend) Login(_ context.Context, _, _ string, _ bool) (*api.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) Signup(_ context.Context, _, _ string, _ []string) (*api.SignupResult, error) {
	return &api.SignupResult{}, f.signupErr
}

func (f *fakeBackend) Logout(_ context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeBackend) CurrentUser(_ context.Context) (models.UserWithShops, error) {
	return f.user, f.userErr
}

func (f *fakeBackend) SetToken(token string) { f.token = token }

func johnProfile() models.UserWithShops {
	return models.UserWithShops{
		ID:       "user-1",
		Username: "john_doe",
		Shops:    []models.Shop{{ID: "shop-1", Name: "coffee-shop", OwnerID: "user-1"}},
	}
}

func unauthorized() error {
	return &api.APIError{StatusCode: http.StatusUnauthorized, Messages: []string{"Invalid auth token"}}
}

func TestControllerStartsUnknown(t *testing.T) {
	c := NewController(&fakeBackend{}, NewMemoryStore())
	assert.Equal(t, StateUnknown, c.State())
	assert.Nil(t, c.User())
}

func TestInitWithStoredToken(t *testing.T) {
	backend := &fakeBackend{user: johnProfile()}
	store := NewMemoryStore()
	require.NoError(t, store.Set("tok-123"))

	c := NewController(backend, store)
	c.Init(context.Background(), "localhost:3000")

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok-123", backend.token)
	require.NotNil(t, c.User())
	assert.Equal(t, "john_doe", c.User().Username)
}

func TestInitClearsStaleTokenOn401(t *testing.T) {
	backend := &fakeBackend{userErr: unauthorized()}
	store := NewMemoryStore()
	require.NoError(t, store.Set("stale"))

	c := NewController(backend, store)
	c.Init(context.Background(), "localhost:3000")

	assert.Equal(t, StateUnauthenticated, c.State())
	token, _ := store.Get()
	assert.Empty(t, token, "stale token must be cleared to avoid 401 retry loops")
	assert.Empty(t, backend.token)
}

func TestInitCookieFallback(t *testing.T) {
	backend := &fakeBackend{user: johnProfile()}
	c := NewController(backend, NewMemoryStore())
	c.Init(context.Background(), "localhost:3000")

	assert.Equal(t, StateAuthenticated, c.State())
}

func TestInitNoSession(t *testing.T) {
	backend := &fakeBackend{userErr: unauthorized()}
	c := NewController(backend, NewMemoryStore())
	c.Init(context.Background(), "localhost:3000")

	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestInitUsesRelayOnSubdomain(t *testing.T) {
	backend := &fakeBackend{user: johnProfile()}
	store := NewMemoryStore()

	requests := make(chan struct{}, 1)
	replies := make(chan TokenMessage, 1)
	relay := NewBridgeRelay(requests, replies, []string{"http://localhost:3001"})
	go func() {
		<-requests
		replies <- TokenMessage{Origin: "http://localhost:3001", Token: "relayed-tok"}
	}()

	c := NewController(backend, store, WithRelay(relay))
	c.Init(context.Background(), "coffee-shop.localhost:3000")

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "relayed-tok", backend.token)
	stored, _ := store.Get()
	assert.Equal(t, "relayed-tok", stored, "relayed token persists for the next start")
}

func TestInitSkipsRelayOnMainDomain(t *testing.T) {
	backend := &fakeBackend{userErr: unauthorized()}
	requests := make(chan struct{}, 1)
	relay := NewBridgeRelay(requests, make(chan TokenMessage), []string{"http://localhost:3001"})

	c := NewController(backend, NewMemoryStore(), WithRelay(relay))
	c.Init(context.Background(), "localhost:3000")

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, requests, "relay must not run on the main domain")
}

// A relay that never answers settles the controller without hanging it.
func TestInitRelayTimeout(t *testing.T) {
	backend := &fakeBackend{userErr: unauthorized()}
	relay := NewBridgeRelay(make(chan struct{}, 1), make(chan TokenMessage), []string{"http://localhost:3001"})
	relay.timeout = 50 * time.Millisecond

	c := NewController(backend, NewMemoryStore(), WithRelay(relay))

	start := time.Now()
	c.Init(context.Background(), "coffee-shop.localhost:3000")

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoginSuccess(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{User: johnProfile(), Token: "tok-123", ExpiresIn: "24h"},
	}
	store := NewMemoryStore()
	c := NewController(backend, store)

	errs := c.Login(context.Background(), "john_doe", "SecurePass123!", false)
	assert.Nil(t, errs)
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok-123", backend.token)

	stored, _ := store.Get()
	assert.Equal(t, "tok-123", stored)
}

func TestLoginFailureSurfacesMessages(t *testing.T) {
	backend := &fakeBackend{
		loginErr: &api.APIError{StatusCode: http.StatusUnauthorized, Messages: []string{"Invalid credentials"}},
	}
	c := NewController(backend, NewMemoryStore())

	errs := c.Login(context.Background(), "john_doe", "wrong", false)
	assert.Equal(t, []string{"Invalid credentials"}, errs)
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Nil(t, c.User())
}

func TestSignupSurfacesAggregatedErrors(t *testing.T) {
	backend := &fakeBackend{
		signupErr: &api.APIError{
			StatusCode: http.StatusBadRequest,
			Messages:   []string{"Username must be at least 3 characters long", "At least 3 unique shop names are required"},
		},
	}
	c := NewController(backend, NewMemoryStore())

	errs := c.Signup(context.Background(), "jo", "SecurePass123!", []string{"one"})
	assert.Len(t, errs, 2)
	assert.Equal(t, StateUnknown, c.State(), "signup does not change session state")
}

// Logout clears local state even when the server call fails.
func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	backend := &fakeBackend{
		user:      johnProfile(),
		logoutErr: errors.New("network unreachable"),
	}
	store := NewMemoryStore()
	require.NoError(t, store.Set("tok-123"))

	c := NewController(backend, store)
	c.Init(context.Background(), "localhost:3000")
	require.Equal(t, StateAuthenticated, c.State())

	c.Logout(context.Background())

	assert.True(t, backend.logoutCalled)
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Nil(t, c.User())
	token, _ := store.Get()
	assert.Empty(t, token)
	assert.Empty(t, backend.token)
}

func TestRefreshClearsOn401(t *testing.T) {
	backend := &fakeBackend{user: johnProfile()}
	store := NewMemoryStore()
	require.NoError(t, store.Set("tok-123"))

	c := NewController(backend, store)
	c.Init(context.Background(), "localhost:3000")
	require.Equal(t, StateAuthenticated, c.State())

	backend.userErr = unauthorized()
	c.Refresh(context.Background())

	assert.Equal(t, StateUnauthenticated, c.State())
	token, _ := store.Get()
	assert.Empty(t, token)
}
