package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/domain/analytics"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/pkg/httpmiddleware"
)

// AnalyticsHandler serves the sales dashboard and the UI event beacon.
type AnalyticsHandler struct {
	store   *pos.Store
	now     func() time.Time
	limiter *httpmiddleware.Limiter
}

// RegisterRoutes mounts the analytics endpoints.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Report)
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware())
		}
		r.Post("/track", h.Track)
	})
}

// Report computes the dashboard for period (default today). With metric
// set only that section is returned.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := analytics.ParsePeriod(q.Get("period"))
	if err != nil {
		fail(w, r, err)
		return
	}
	report := analytics.Compute(h.store.Orders(order.Filter{}, order.SortOldest), period, h.now())

	name := q.Get("metric")
	if name == "" {
		ok(w, r, report)
		return
	}
	section, found := report.Metric(name)
	if !found {
		fail(w, r, badRequest("unknown metric %q", name))
		return
	}
	ok(w, r, section)
}

// Track logs a UI event with the caller's user agent and address.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var ev analytics.Event
	if err := decode(r, &ev); err != nil {
		fail(w, r, err)
		return
	}
	ev.UserAgent = r.UserAgent()
	ev.IP = httpmiddleware.ClientIP(r)
	if _, err := analytics.Track(r.Context(), ev, h.now()); err != nil {
		fail(w, r, err)
		return
	}
	message(w, r, nil, "Event tracked successfully")
}
