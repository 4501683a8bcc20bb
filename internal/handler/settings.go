package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/domain/pos"
)

// SettingsHandler serves the restaurant settings.
type SettingsHandler struct {
	store *pos.Store
}

// RegisterRoutes mounts the settings endpoints.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// Get returns the settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.store.Settings())
}

// Update merges the body into the settings. Changing the rates reprices
// the cart.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u pos.SettingsUpdate
	if err := decode(r, &u); err != nil {
		fail(w, r, err)
		return
	}
	s, err := h.store.UpdateSettings(r.Context(), u)
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, s, "Settings updated successfully")
}
