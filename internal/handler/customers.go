package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/pos"
)

// CustomerHandler serves the customer directory.
type CustomerHandler struct {
	customers *customer.Directory
	ids       pos.IDGenerator
	now       func() time.Time
}

// RegisterRoutes mounts the customer endpoints.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type customerRequest struct {
	Name        *string               `json:"name"`
	Phone       *string               `json:"phone"`
	Email       *string               `json:"email"`
	Preferences *customer.Preferences `json:"preferences"`
}

func (req customerRequest) apply(c *customer.Customer) {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Preferences != nil {
		c.Preferences = *req.Preferences
	}
}

// List searches customers by name, phone or email.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	sortBy := q.Get("sortBy")
	switch sortBy {
	case "", "name", "loyaltyPoints", "totalSpent", "lastOrder":
	default:
		fail(w, r, badRequest("invalid sortBy %q", sortBy))
		return
	}
	paged(w, r, h.customers.List(q.Get("search"), sortBy, limit, offset), nil)
}

// Get returns one customer.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, c)
}

// Create registers a new customer with zeroed loyalty counters.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	c := customer.Customer{
		ID:         h.ids.NewID("cust"),
		TotalSpent: decimal.Zero,
		CreatedAt:  h.now().UTC(),
	}
	req.apply(&c)
	if err := h.customers.Create(c); err != nil {
		fail(w, r, err)
		return
	}
	created(w, r, c, "Customer created successfully")
}

// Update changes the contact details or preferences of a customer.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	c, err := h.customers.Update(chi.URLParam(r, "id"), req.apply)
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, c, "Customer updated successfully")
}

// Delete removes a customer.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Delete(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, c, "Customer deleted successfully")
}
