package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL)
	require.NoError(t, err)
	return client
}

func TestLoginParsesResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "john_doe", payload["username"])
		assert.Equal(t, true, payload["rememberMe"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 200,
			"message": "Login successful",
			"user": {"id": "user-1", "username": "john_doe", "shops": [{"id": "shop-1", "name": "coffee-shop"}]},
			"token": "tok-123",
			"expiresIn": "7d"
		}`))
	})

	result, err := client.Login(context.Background(), "john_doe", "SecurePass123!", true)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.Equal(t, "7d", result.ExpiresIn)
	assert.Equal(t, "john_doe", result.User.Username)
	require.Len(t, result.User.Shops, 1)
	assert.Equal(t, "coffee-shop", result.User.Shops[0].Name)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "user-1", "username": "john_doe", "shops": []}`))
	})

	client.SetToken("tok-123")
	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	client.SetToken("")
	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestErrorBodyDecoding(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode":400,"message":["Password must be at least 8 characters long","At least 3 unique shop names are required"],"error":"Bad Request"}`))
	})

	_, err := client.Signup(context.Background(), "john_doe", "weak", []string{"one"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Len(t, apiErr.Messages, 2)
	assert.Equal(t, apiErr.Messages, ErrorMessages(err))
}

func TestUnauthorizedSentinel(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"statusCode":401,"message":["Invalid auth token"],"error":"Unauthorized"}`))
	})

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNotFoundSentinel(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"statusCode":404,"message":["Shop with name 'nosuchshop' not found"],"error":"Not Found"}`))
	})

	_, err := client.ShopByName(context.Background(), "nosuchshop")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNonJSONErrorBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	})

	err := client.Logout(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Messages)
}
