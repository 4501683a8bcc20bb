package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/collection"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/pos"
)

// MenuHandler serves the menu catalog.
type MenuHandler struct {
	items        *menu.Catalog
	ids          pos.IDGenerator
	imageBaseURL string
}

// RegisterRoutes mounts the menu endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/categories", h.Categories)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// withImageBase resolves a relative image path against the configured base.
func (h *MenuHandler) withImageBase(item menu.Item) menu.Item {
	if h.imageBaseURL == "" || item.Image == "" || strings.Contains(item.Image, "://") {
		return item
	}
	item.Image = strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(item.Image, "/")
	return item
}

// List returns menu items. Only available items are listed unless
// available=all or available=false.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	avail := q.Get("available")
	f := menu.Filter{
		Category:      q.Get("category"),
		Diet:          q.Get("type"),
		Search:        strings.TrimSpace(q.Get("search")),
		OnlyAvailable: avail != "all" && avail != "false",
	}
	switch strings.ToLower(f.Diet) {
	case "", "all", "veg", "non-veg":
	default:
		fail(w, r, badRequest("invalid type %q: want veg or non-veg", f.Diet))
		return
	}

	page := h.items.List(collection.Query[menu.Item]{
		Match:  f.Match,
		Less:   menu.SortBy(q.Get("sortBy")),
		Limit:  limit,
		Offset: offset,
	})
	for i, item := range page.Items {
		page.Items[i] = h.withImageBase(item)
	}
	paged(w, r, page, nil)
}

// Categories returns the fixed menu sections.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ok(w, r, menu.Categories())
}

// Get returns one menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, h.withImageBase(item))
}

// Create adds a menu item. Items are available unless stated otherwise.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	item := menu.Item{Available: true}
	if err := decode(r, &item); err != nil {
		fail(w, r, err)
		return
	}
	if err := menu.Validate(item); err != nil {
		fail(w, r, err)
		return
	}
	if item.ID == "" {
		item.ID = h.ids.NewID("item")
	}
	if err := h.items.Create(item, nil); err != nil {
		fail(w, r, err)
		return
	}
	created(w, r, h.withImageBase(item), "Menu item created successfully")
}

// Update merges the request body into an existing item.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.items.Get(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	// Decoding reuses slice backing arrays, so work on a copy.
	item = item.Clone()
	if err := decode(r, &item); err != nil {
		fail(w, r, err)
		return
	}
	item.ID = id
	if err := menu.Validate(item); err != nil {
		fail(w, r, err)
		return
	}
	updated, err := h.items.Update(id, func(stored *menu.Item) error {
		*stored = item
		return nil
	}, nil)
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, h.withImageBase(updated), "Menu item updated successfully")
}

// Delete removes a menu item.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Delete(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, item, "Menu item deleted successfully")
}
