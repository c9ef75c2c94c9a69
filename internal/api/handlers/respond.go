package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nvaldr/shopstack-be/internal/apperrors"
	"github.com/rs/zerolog/log"
)

// errorBody matches the wire shape browser clients already parse:
// {statusCode, message: [...], error}.
type errorBody struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Error      string   `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps an application error to its HTTP status and aggregated
// message list. Anything outside the taxonomy becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := appErr.Status()
		writeJSON(w, status, errorBody{
			StatusCode: status,
			Message:    appErr.Messages,
			Error:      http.StatusText(status),
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, errorBody{
		StatusCode: http.StatusInternalServerError,
		Message:    []string{"Internal server error"},
		Error:      http.StatusText(http.StatusInternalServerError),
	})
}
