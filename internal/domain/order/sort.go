package order

import (
	"slices"
	"time"
)

// SortMode names an order listing order.
type SortMode string

const (
	SortNewest     SortMode = "newest"
	SortOldest     SortMode = "oldest"
	SortAmountHigh SortMode = "amount-high"
	SortAmountLow  SortMode = "amount-low"
	SortStatus     SortMode = "status"
)

// Less returns the comparison for the sort mode, or nil to keep creation
// order.
func (m SortMode) Less() func(a, b Order) bool {
	switch m {
	case SortNewest:
		return func(a, b Order) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortOldest:
		return func(a, b Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortAmountHigh:
		return func(a, b Order) bool { return a.Total.GreaterThan(b.Total) }
	case SortAmountLow:
		return func(a, b Order) bool { return a.Total.LessThan(b.Total) }
	case SortStatus:
		return func(a, b Order) bool { return statusRank[a.Status] < statusRank[b.Status] }
	default:
		return nil
	}
}

// Sort orders in place by mode. Unknown modes keep the current order.
func Sort(orders []Order, mode SortMode) {
	less := mode.Less()
	if less == nil {
		return
	}
	slices.SortStableFunc(orders, func(a, b Order) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
}

// Filter selects orders for listing. Zero fields match everything.
type Filter struct {
	Status Status
	Type   Type
	Since  time.Time
}

// Match reports whether o passes the filter.
func (f Filter) Match(o Order) bool {
	if f.Status != "" && f.Status != "all" && o.Status != f.Status {
		return false
	}
	if f.Type != "" && o.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
