package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nvaldr/shopstack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ShopHandler handles HTTP requests for shop lookups.
type ShopHandler struct {
	service services.ShopServiceProvider
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(service services.ShopServiceProvider) *ShopHandler {
	return &ShopHandler{service: service}
}

// GetByName handles retrieving a shop by its name.
func (h *ShopHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	shop, err := h.service.GetShopByName(name)
	if err != nil {
		log.Warn().Err(err).Str("shop_name", name).Msg("Failed to get shop by name")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

// Get handles retrieving a shop by its ID.
func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shop, err := h.service.GetShopByID(id)
	if err != nil {
		log.Warn().Err(err).Str("shop_id", id).Msg("Failed to get shop by ID")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}
