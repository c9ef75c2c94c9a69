package handlers

import (
	"net/http"

	"github.com/nvaldr/shopstack-be/internal/auth"
	"github.com/nvaldr/shopstack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe retrieves the currently authenticated user and their shops. The shop
// list is re-read from the store rather than trusted from the token, so it
// reflects current ownership.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.service.GetUserWithShops(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
