package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/domain/inventory"
	"github.com/xenking/posify/internal/domain/pos"
)

// InventoryHandler serves stock items.
type InventoryHandler struct {
	stock *inventory.Stock
	ids   pos.IDGenerator
	now   func() time.Time
}

// RegisterRoutes mounts the inventory endpoints.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// List returns stock items with the inventory-wide stats.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := inventory.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   inventory.StockStatus(q.Get("status")),
	}
	switch f.Status {
	case "", "all", inventory.InStock, inventory.LowStock, inventory.OutOfStock:
	default:
		fail(w, r, badRequest("invalid status %q", f.Status))
		return
	}
	paged(w, r, h.stock.List(f, q.Get("sortBy"), limit, offset), h.stock.Stats())
}

// Get returns one stock item.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.stock.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, item)
}

// Create adds a stock item. Restock time defaults to now.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item inventory.Item
	if err := decode(r, &item); err != nil {
		fail(w, r, err)
		return
	}
	if item.ID == "" {
		item.ID = h.ids.NewID("inv")
	}
	if item.LastRestocked.IsZero() {
		item.LastRestocked = h.now().UTC()
	}
	item, err := h.stock.Create(item)
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, r, item, "Inventory item created successfully")
}

// Update merges the body into a stock item and recomputes its status.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := h.stock.Get(id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if current.ExpiryDate != nil {
		t := *current.ExpiryDate
		current.ExpiryDate = &t
	}
	if err := decode(r, &current); err != nil {
		fail(w, r, err)
		return
	}
	item, err := h.stock.Update(id, func(i *inventory.Item) { *i = current })
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, item, "Inventory item updated successfully")
}

// Delete removes a stock item.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.stock.Delete(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, item, "Inventory item deleted successfully")
}
