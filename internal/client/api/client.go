// Package api implements the HTTP client for the shopstack backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/nvaldr/shopstack-be/internal/models"
)

// Client talks to the backend REST API. It keeps a cookie jar so the shared
// parent-domain session cookie works across requests, and optionally attaches
// a bearer token.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// LoginResult is the successful login response.
type LoginResult struct {
	Status    int                  `json:"status"`
	Message   string               `json:"message"`
	User      models.UserWithShops `json:"user"`
	Token     string               `json:"token"`
	ExpiresIn string               `json:"expiresIn"`
}

// SignupResult is the successful signup response.
type SignupResult struct {
	Message string `json:"message"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// New creates a client for the given base URL, e.g. "http://localhost:3000".
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// SetToken sets the bearer token attached to subsequent requests. An empty
// string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently attached bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Signup registers a new user with their initial shops.
func (c *Client) Signup(ctx context.Context, username, password string, shopNames []string) (*SignupResult, error) {
	body := map[string]any{"username": username, "password": password, "shopNames": shopNames}
	var result SignupResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates and returns the session token and profile.
func (c *Client) Login(ctx context.Context, username, password string, rememberMe bool) (*LoginResult, error) {
	body := map[string]any{"username": username, "password": password, "rememberMe": rememberMe}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout asks the server to clear the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser fetches the authenticated user's profile and shops.
func (c *Client) CurrentUser(ctx context.Context) (models.UserWithShops, error) {
	var user models.UserWithShops
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return models.UserWithShops{}, err
	}
	return user, nil
}

// ShopByName fetches a shop record by name.
func (c *Client) ShopByName(ctx context.Context, name string) (models.Shop, error) {
	var shop models.Shop
	if err := c.do(ctx, http.MethodGet, "/shops/by-name/"+name, nil, &shop); err != nil {
		return models.Shop{}, err
	}
	return shop, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var body struct {
		StatusCode int      `json:"statusCode"`
		Message    []string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || len(body.Message) == 0 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Messages:   []string{fmt.Sprintf("request failed with status %d", resp.StatusCode)},
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Messages: body.Message}
}
