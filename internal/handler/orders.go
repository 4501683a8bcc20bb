package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/collection"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/payment"
	"github.com/xenking/posify/internal/domain/pos"
)

// OrderHandler serves placed orders and checkout.
type OrderHandler struct {
	store    *pos.Store
	menu     *menu.Catalog
	payments pos.PaymentProcessor
}

// RegisterRoutes mounts the order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/checkout", h.Checkout)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
	})
}

// display rounds the money fields of o to cents.
func display(o order.Order) order.Order {
	o.Subtotal = o.Subtotal.Round(2)
	o.ServiceCharge = o.ServiceCharge.Round(2)
	o.Tax = o.Tax.Round(2)
	o.Discount = o.Discount.Round(2)
	o.Total = o.Total.Round(2)
	return o
}

// List returns orders filtered by status, type and since, newest first
// unless sortBy says otherwise.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := order.Filter{
		Status: order.Status(q.Get("status")),
		Type:   order.Type(q.Get("type")),
	}
	if f.Status != "" && f.Status != "all" && !f.Status.Valid() {
		fail(w, r, badRequest("invalid status %q", f.Status))
		return
	}
	if f.Type != "" && !f.Type.Valid() {
		fail(w, r, badRequest("invalid type %q", f.Type))
		return
	}
	if s := q.Get("since"); s != "" {
		if f.Since, err = time.Parse(time.RFC3339, s); err != nil {
			fail(w, r, badRequest("invalid since %q: want RFC 3339", s))
			return
		}
	}
	mode := order.SortMode(q.Get("sortBy"))
	if mode == "" {
		mode = order.SortNewest
	}
	if mode.Less() == nil {
		fail(w, r, badRequest("invalid sortBy %q", mode))
		return
	}

	orders := h.store.Orders(f, mode)
	for i := range orders {
		orders[i] = display(orders[i])
	}
	paged(w, r, collection.Paginate(orders, limit, offset), nil)
}

// Get returns one order.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.Order(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, display(o))
}

// Create places the cart as a pending order without taking payment. The
// body is optional and may carry the intended payment method.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod *order.PaymentMethod `json:"paymentMethod"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			fail(w, r, err)
			return
		}
	}
	if m := req.PaymentMethod; m != nil && !m.Type.Valid() {
		fail(w, r, badRequest("invalid payment type %q", m.Type))
		return
	}
	if err := orderableCart(r.Context(), h.store, h.menu); err != nil {
		fail(w, r, err)
		return
	}
	o, err := h.store.CreateOrder(r.Context(), req.PaymentMethod)
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, r, display(o), "Order created successfully")
}

// Checkout takes payment for the cart and places a paid order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req payment.Request
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if err := orderableCart(r.Context(), h.store, h.menu); err != nil {
		fail(w, r, err)
		return
	}
	o, err := h.store.Checkout(r.Context(), h.payments, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, r, display(o), "Payment processed successfully")
}

// Update changes status, payment status, payment method or instructions.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u order.Update
	if err := decode(r, &u); err != nil {
		fail(w, r, err)
		return
	}
	if u.Empty() {
		fail(w, r, badRequest("nothing to update"))
		return
	}
	o, err := h.store.UpdateOrder(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, display(o), "Order updated successfully")
}
