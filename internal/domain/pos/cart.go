package pos

import (
	"context"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/pricing"
)

// CartView is the cart contents with totals at the current rates.
type CartView struct {
	Lines     []cart.Line
	ItemCount int
	Totals    pricing.Totals
}

// Cart returns the cart and its totals.
func (s *Store) Cart() (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.Lines()
	totals, err := pricing.CartTotals(lines, s.settings.Rates())
	if err != nil {
		return CartView{}, err
	}
	return CartView{
		Lines:     lines,
		ItemCount: s.cart.ItemCount(),
		Totals:    totals,
	}, nil
}

// AddToCart adds qty units of item. A quantity below one is ignored and
// reports false. Instructions, when set, replace those of the line.
func (s *Store) AddToCart(ctx context.Context, item menu.Item, qty int, instructions string) (cart.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.cart.Add(item, qty, func() string { return s.ids.NewID("cart") })
	if !ok {
		return cart.Line{}, false
	}
	if instructions != "" {
		// The line was just added or merged, so it exists.
		_ = s.cart.SetInstructions(line.ID, instructions)
		line.SpecialInstructions = instructions
	}
	s.revision++
	s.persistCart(ctx)
	return line, true
}

// RefreshCart reprices the cart against the current menu. lookup returns
// the current state of a menu item and false when it was deleted; such
// lines are removed and returned.
func (s *Store) RefreshCart(ctx context.Context, lookup func(itemID string) (menu.Item, bool)) []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, changed := s.cart.Refresh(lookup)
	if !changed {
		return nil
	}
	s.revision++
	s.persistCart(ctx)
	return removed
}

// UpdateCartQuantity sets the quantity of a line; zero or less removes it.
func (s *Store) UpdateCartQuantity(ctx context.Context, lineID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.UpdateQuantity(lineID, qty); err != nil {
		return err
	}
	s.revision++
	s.persistCart(ctx)
	return nil
}

// SetCartInstructions replaces the special instructions of a line.
func (s *Store) SetCartInstructions(ctx context.Context, lineID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.SetInstructions(lineID, text); err != nil {
		return err
	}
	s.persistCart(ctx)
	return nil
}

// RemoveFromCart deletes a line. Removing an absent line is a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cart.Remove(lineID) {
		return false
	}
	s.revision++
	s.persistCart(ctx)
	return true
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.revision++
	s.persistCart(ctx)
}
