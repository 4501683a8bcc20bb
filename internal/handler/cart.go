package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/domain/pricing"
)

// CartHandler serves the terminal cart.
type CartHandler struct {
	store *pos.Store
	menu  *menu.Catalog
}

// RegisterRoutes mounts the cart endpoints.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{lineId}", h.UpdateItem)
	r.Delete("/items/{lineId}", h.RemoveItem)
}

type cartResponse struct {
	Lines     []cart.Line    `json:"lines"`
	ItemCount int            `json:"itemCount"`
	Totals    pricing.Totals `json:"totals"`
}

type addItemRequest struct {
	MenuItemID          string `json:"menuItemId"`
	Quantity            *int   `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions"`
}

type updateItemRequest struct {
	Quantity            *int    `json:"quantity"`
	SpecialInstructions *string `json:"specialInstructions"`
}

// refreshCart reprices the cart against the menu and drops lines whose item
// was deleted.
func refreshCart(ctx context.Context, store *pos.Store, items *menu.Catalog) []cart.Line {
	return store.RefreshCart(ctx, func(id string) (menu.Item, bool) {
		item, err := items.Get(id)
		return item, err == nil
	})
}

// orderableCart refreshes the cart and rejects it when a line's item left
// the menu or is no longer available.
func orderableCart(ctx context.Context, store *pos.Store, items *menu.Catalog) error {
	if removed := refreshCart(ctx, store, items); len(removed) > 0 {
		item := removed[0].MenuItem
		return &UnavailableError{ItemID: item.ID, Name: item.Name}
	}
	v, err := store.Cart()
	if err != nil {
		return err
	}
	for _, l := range v.Lines {
		if !l.MenuItem.Available {
			return &UnavailableError{ItemID: l.MenuItem.ID, Name: l.MenuItem.Name}
		}
	}
	return nil
}

func (h *CartHandler) view(ctx context.Context) (cartResponse, error) {
	refreshCart(ctx, h.store, h.menu)
	v, err := h.store.Cart()
	if err != nil {
		return cartResponse{}, err
	}
	return cartResponse{
		Lines:     v.Lines,
		ItemCount: v.ItemCount,
		Totals:    v.Totals.Rounded(),
	}, nil
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, status int, msg string) {
	v, err := h.view(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, status, envelope{Success: true, Data: v, Message: msg})
}

// Get returns the cart lines and rounded totals.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, "")
}

// AddItem adds a menu item to the cart, merging with an existing line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.MenuItemID == "" {
		fail(w, r, badRequest("menuItemId is required"))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		fail(w, r, badRequest("quantity must be at least 1"))
		return
	}
	item, err := h.menu.Get(req.MenuItemID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !item.Available {
		fail(w, r, &UnavailableError{ItemID: item.ID, Name: item.Name})
		return
	}
	h.store.AddToCart(r.Context(), item, qty, req.SpecialInstructions)
	h.respond(w, r, http.StatusCreated, "Item added to cart")
}

// UpdateItem changes the quantity or instructions of a line. A quantity of
// zero or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineId")
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Quantity == nil && req.SpecialInstructions == nil {
		fail(w, r, badRequest("nothing to update"))
		return
	}
	if req.Quantity != nil {
		if err := h.store.UpdateCartQuantity(r.Context(), lineID, *req.Quantity); err != nil {
			fail(w, r, err)
			return
		}
	}
	if req.SpecialInstructions != nil && (req.Quantity == nil || *req.Quantity > 0) {
		if err := h.store.SetCartInstructions(r.Context(), lineID, *req.SpecialInstructions); err != nil {
			fail(w, r, err)
			return
		}
	}
	h.respond(w, r, http.StatusOK, "Cart updated")
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveFromCart(r.Context(), chi.URLParam(r, "lineId"))
	h.respond(w, r, http.StatusOK, "Item removed from cart")
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	h.respond(w, r, http.StatusOK, "Cart cleared")
}
