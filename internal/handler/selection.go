package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/domain/table"
)

// SelectionHandler serves the current table, customer, order type and
// category of the terminal.
type SelectionHandler struct {
	store     *pos.Store
	tables    *table.Floor
	customers *customer.Directory
}

// RegisterRoutes mounts the selection endpoints.
func (h *SelectionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/table", h.SetTable)
	r.Delete("/table", h.ClearTable)
	r.Put("/customer", h.SetCustomer)
	r.Delete("/customer", h.ClearCustomer)
	r.Put("/order-type", h.SetOrderType)
	r.Put("/category", h.SetCategory)
}

// Get returns the selection.
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.store.Selection())
}

// SetTable selects a table by ID.
func (h *SelectionHandler) SetTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID string `json:"tableId"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	t, err := h.tables.Get(req.TableID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.store.SetTable(r.Context(), &t)
	ok(w, r, h.store.Selection())
}

// ClearTable deselects the table.
func (h *SelectionHandler) ClearTable(w http.ResponseWriter, r *http.Request) {
	h.store.SetTable(r.Context(), nil)
	ok(w, r, h.store.Selection())
}

// SetCustomer selects a customer by ID.
func (h *SelectionHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customerId"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	c, err := h.customers.Get(req.CustomerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.store.SetCustomer(r.Context(), &c)
	ok(w, r, h.store.Selection())
}

// ClearCustomer deselects the customer.
func (h *SelectionHandler) ClearCustomer(w http.ResponseWriter, r *http.Request) {
	h.store.SetCustomer(r.Context(), nil)
	ok(w, r, h.store.Selection())
}

// SetOrderType selects dine-in, takeaway or delivery.
func (h *SelectionHandler) SetOrderType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderType order.Type `json:"orderType"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.store.SetOrderType(r.Context(), req.OrderType); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, h.store.Selection())
}

// SetCategory selects the menu category being browsed.
func (h *SelectionHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	h.store.SetCategory(req.Category)
	ok(w, r, h.store.Selection())
}
