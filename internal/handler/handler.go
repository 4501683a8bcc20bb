// Package handler exposes the terminal over a JSON HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/inventory"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/domain/table"
	"github.com/xenking/posify/pkg/health"
	"github.com/xenking/posify/pkg/httpmiddleware"
)

// Config holds the dependencies of the API.
type Config struct {
	Store     *pos.Store
	Menu      *menu.Catalog
	Customers *customer.Directory
	Tables    *table.Floor
	Inventory *inventory.Stock
	Payments  pos.PaymentProcessor
	IDs       pos.IDGenerator
	Now       func() time.Time

	// ImageBaseURL is prepended to relative menu image paths. Empty keeps
	// paths as stored.
	ImageBaseURL string
	// TrackLimiter throttles the analytics beacon. Nil disables it.
	TrackLimiter *httpmiddleware.Limiter
	// Health serves /livez and /readyz when set.
	Health *health.Health
	// Events serves /ws/orders when set.
	Events http.Handler
}

// NewRouter builds the chi router for the whole API.
func NewRouter(cfg Config) http.Handler {
	if cfg.IDs == nil {
		cfg.IDs = pos.UUIDGenerator{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, envelope{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, envelope{Error: "method not allowed"})
	})

	if cfg.Health != nil {
		r.Get("/livez", cfg.Health.LiveEndpoint)
		r.Get("/readyz", cfg.Health.ReadyEndpoint)
	}
	if cfg.Events != nil {
		r.Handle("/ws/orders", cfg.Events)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Route("/menu", (&MenuHandler{items: cfg.Menu, ids: cfg.IDs, imageBaseURL: cfg.ImageBaseURL}).RegisterRoutes)
		r.Route("/cart", (&CartHandler{store: cfg.Store, menu: cfg.Menu}).RegisterRoutes)
		r.Route("/selection", (&SelectionHandler{
			store:     cfg.Store,
			tables:    cfg.Tables,
			customers: cfg.Customers,
		}).RegisterRoutes)
		r.Route("/orders", (&OrderHandler{store: cfg.Store, menu: cfg.Menu, payments: cfg.Payments}).RegisterRoutes)
		r.Route("/customers", (&CustomerHandler{customers: cfg.Customers, ids: cfg.IDs, now: cfg.Now}).RegisterRoutes)
		r.Route("/inventory", (&InventoryHandler{stock: cfg.Inventory, ids: cfg.IDs, now: cfg.Now}).RegisterRoutes)
		r.Route("/tables", (&TableHandler{tables: cfg.Tables, ids: cfg.IDs}).RegisterRoutes)
		r.Route("/analytics", (&AnalyticsHandler{store: cfg.Store, now: cfg.Now, limiter: cfg.TrackLimiter}).RegisterRoutes)
		r.Route("/settings", (&SettingsHandler{store: cfg.Store}).RegisterRoutes)
	})
	return r
}
