package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nvaldr/shopstack-be/internal/apperrors"
	"github.com/nvaldr/shopstack-be/internal/auth"
	"github.com/nvaldr/shopstack-be/internal/models"
	"github.com/nvaldr/shopstack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	service      services.UserServiceProvider
	cookieDomain string
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. The session cookie is scoped to
// cookieDomain so it is shared across shop subdomains.
func NewAuthHandler(service services.UserServiceProvider, cookieDomain string, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, cookieDomain: cookieDomain, secureCookie: secureCookie}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	ShopNames []string `json:"shopNames"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Signup handles new user registration with their initial shops.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	user, err := h.service.Signup(payload.Username, payload.Password, payload.ShopNames)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Signup rejected")
		writeError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	user, err := h.service.Authenticate(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	token, expiresIn, err := auth.GenerateJWT(models.User{ID: user.ID, Username: user.Username}, payload.RememberMe)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, err)
		return
	}

	maxAge := 24 * time.Hour
	if payload.RememberMe {
		maxAge = 7 * 24 * time.Hour
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Domain:   h.cookieDomain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    http.StatusOK,
		"message":   "Login successful",
		"user":      user,
		"token":     token,
		"expiresIn": expiresIn,
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is nothing
// to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Domain:   h.cookieDomain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
