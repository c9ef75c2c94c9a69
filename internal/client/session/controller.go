// Package session implements the client-side authentication controller: a
// state machine over the user's session, pluggable token storage, and the
// cross-origin token relay used on shop subdomains.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/nvaldr/shopstack-be/internal/client/api"
	"github.com/nvaldr/shopstack-be/internal/models"
	"github.com/nvaldr/shopstack-be/internal/subdomain"
)

// State is the controller's view of the session.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "invalid"
}

// Backend is the slice of the API client the controller needs.
type Backend interface {
	Login(ctx context.Context, username, password string, rememberMe bool) (*api.LoginResult, error)
	Signup(ctx context.Context, username, password string, shopNames []string) (*api.SignupResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.UserWithShops, error)
	SetToken(token string)
}

// Controller owns the client's authentication state. It is the single writer;
// everything else reads snapshots via State and User.
type Controller struct {
	backend    Backend
	store      TokenStore
	relay      TokenRelay // may be nil
	baseDomain string

	mu    sync.RWMutex
	state State
	user  *models.UserWithShops
}

// Option configures a Controller.
type Option func(*Controller)

// WithRelay sets the cross-origin token relay used on shop subdomains.
func WithRelay(relay TokenRelay) Option {
	return func(c *Controller) { c.relay = relay }
}

// WithBaseDomain sets the parent domain used for subdomain detection.
// Defaults to "localhost".
func WithBaseDomain(domain string) Option {
	return func(c *Controller) { c.baseDomain = domain }
}

// NewController creates a controller in the Unknown state.
func NewController(backend Backend, store TokenStore, opts ...Option) *Controller {
	c := &Controller{
		backend:    backend,
		store:      store,
		baseDomain: "localhost",
		state:      StateUnknown,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns a copy of the authenticated user, or nil.
func (c *Controller) User() *models.UserWithShops {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	u.Shops = append([]models.Shop(nil), c.user.Shops...)
	return &u
}

func (c *Controller) set(state State, user *models.UserWithShops) {
	c.mu.Lock()
	c.state = state
	c.user = user
	c.mu.Unlock()
}

// Init resolves any existing session. It tries the stored token first, then
// the cross-origin relay when the page is on a shop subdomain, then falls
// back to cookie-based resolution. Relay failures degrade silently; the
// controller always settles in Authenticated or Unauthenticated.
func (c *Controller) Init(ctx context.Context, pageHost string) {
	c.set(StateChecking, nil)

	token, _ := c.store.Get()

	if token == "" && c.relay != nil && subdomain.Extract(pageHost, c.baseDomain) != "" {
		if relayed, err := c.relay.Obtain(ctx); err == nil && relayed != "" {
			token = relayed
		}
	}

	if token != "" {
		c.backend.SetToken(token)
		user, err := c.backend.CurrentUser(ctx)
		if err == nil {
			// Persist so the next start skips the relay.
			_ = c.store.Set(token)
			c.set(StateAuthenticated, &user)
			return
		}
		if errors.Is(err, api.ErrUnauthorized) {
			// Stale token: clear it so we do not loop on 401s.
			_ = c.store.Clear()
			c.backend.SetToken("")
		}
		c.set(StateUnauthenticated, nil)
		return
	}

	// No token anywhere; the shared parent-domain cookie may still carry a
	// session.
	user, err := c.backend.CurrentUser(ctx)
	if err != nil {
		c.set(StateUnauthenticated, nil)
		return
	}
	c.set(StateAuthenticated, &user)
}

// Login authenticates and stores the returned token. On failure the
// controller settles Unauthenticated and returns the server's messages.
func (c *Controller) Login(ctx context.Context, username, password string, rememberMe bool) []string {
	c.set(StateChecking, nil)

	result, err := c.backend.Login(ctx, username, password, rememberMe)
	if err != nil {
		c.set(StateUnauthenticated, nil)
		return api.ErrorMessages(err)
	}

	c.backend.SetToken(result.Token)
	_ = c.store.Set(result.Token)
	c.set(StateAuthenticated, &result.User)
	return nil
}

// Signup registers a new account. It does not change the session state; the
// caller logs in afterwards. Returns the server's aggregated messages on
// failure.
func (c *Controller) Signup(ctx context.Context, username, password string, shopNames []string) []string {
	if _, err := c.backend.Signup(ctx, username, password, shopNames); err != nil {
		return api.ErrorMessages(err)
	}
	return nil
}

// Logout clears the session. The server call is best effort: local state
// always clears, even when the call fails.
func (c *Controller) Logout(ctx context.Context) {
	_ = c.backend.Logout(ctx)

	c.backend.SetToken("")
	_ = c.store.Clear()
	c.set(StateUnauthenticated, nil)
}

// Refresh re-fetches the current user. A 401 clears the stored token and
// settles Unauthenticated.
func (c *Controller) Refresh(ctx context.Context) {
	user, err := c.backend.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.backend.SetToken("")
			_ = c.store.Clear()
			c.set(StateUnauthenticated, nil)
		}
		return
	}
	c.set(StateAuthenticated, &user)
}
