// Package cart implements the pending order being assembled at the
// terminal.
package cart

import (
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/domain/menu"
)

// ErrLineNotFound is returned when a line ID is not in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// Line is one menu item in the cart with its quantity.
type Line struct {
	ID                  string    `json:"id"`
	MenuItem            menu.Item `json:"menuItem"`
	Quantity            int       `json:"quantity"`
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	l.MenuItem = l.MenuItem.Clone()
	return l
}

// Cart is an ordered list of lines. Each menu item appears at most once and
// every quantity is at least one. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

// New creates a cart from previously stored lines. Lines with a
// non-positive quantity are dropped and duplicates of a menu item are
// merged into the first occurrence.
func New(lines []Line) Cart {
	var c Cart
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if i := c.indexByItem(l.MenuItem.ID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l.Clone())
	}
	return c
}

func (c *Cart) indexByItem(itemID string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.MenuItem.ID == itemID })
}

func (c *Cart) indexByLine(lineID string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == lineID })
}

// Add puts qty units of item into the cart, merging with an existing line
// for the same menu item. A merged line takes the given item as its
// current state. newID is only called when a line is created.
// A quantity below one leaves the cart unchanged and reports false.
func (c *Cart) Add(item menu.Item, qty int, newID func() string) (Line, bool) {
	if qty < 1 {
		return Line{}, false
	}
	if i := c.indexByItem(item.ID); i >= 0 {
		c.lines[i].MenuItem = item.Clone()
		c.lines[i].Quantity += qty
		return c.lines[i].Clone(), true
	}
	l := Line{
		ID:       newID(),
		MenuItem: item.Clone(),
		Quantity: qty,
	}
	c.lines = append(c.lines, l)
	return l.Clone(), true
}

// Refresh replaces the menu item of every line with its current state
// from lookup. Lines whose item lookup no longer finds are removed and
// returned. changed reports whether any line was replaced or removed.
func (c *Cart) Refresh(lookup func(itemID string) (menu.Item, bool)) (removed []Line, changed bool) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		item, ok := lookup(l.MenuItem.ID)
		if !ok {
			removed = append(removed, l.Clone())
			changed = true
			continue
		}
		if !item.Equal(l.MenuItem) {
			l.MenuItem = item.Clone()
			changed = true
		}
		kept = append(kept, l)
	}
	clear(c.lines[len(kept):])
	c.lines = kept
	return removed, changed
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(lineID string, qty int) error {
	i := c.indexByLine(lineID)
	if i < 0 {
		return errors.Wrapf(ErrLineNotFound, "line %q", lineID)
	}
	if qty <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return nil
	}
	c.lines[i].Quantity = qty
	return nil
}

// SetInstructions replaces the special instructions of a line.
func (c *Cart) SetInstructions(lineID, text string) error {
	i := c.indexByLine(lineID)
	if i < 0 {
		return errors.Wrapf(ErrLineNotFound, "line %q", lineID)
	}
	c.lines[i].SpecialInstructions = text
	return nil
}

// Remove deletes a line. Removing an absent line is a no-op that reports
// false.
func (c *Cart) Remove(lineID string) bool {
	i := c.indexByLine(lineID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Line returns a copy of the line with the given ID.
func (c *Cart) Line(lineID string) (Line, error) {
	i := c.indexByLine(lineID)
	if i < 0 {
		return Line{}, errors.Wrapf(ErrLineNotFound, "line %q", lineID)
	}
	return c.lines[i].Clone(), nil
}

// Lines returns a deep copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.Clone()
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
