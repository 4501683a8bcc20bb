// Package collection provides a concurrency-safe, ordered in-memory
// collection with filtering, sorting and offset pagination.
package collection

import (
	"slices"
	"sync"

	"github.com/go-faster/errors"
)

// Sentinel errors returned by Collection.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// DefaultLimit is applied when a query does not set a positive limit.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Query selects a page of items.
type Query[T any] struct {
	Match  func(T) bool
	Less   func(a, b T) bool
	Limit  int
	Offset int
}

// Page is the result of List.
type Page[T any] struct {
	Items   []T
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// Collection holds items keyed by the ID function in insertion order.
type Collection[T any] struct {
	mu    sync.RWMutex
	id    func(T) string
	items []T
}

// New creates a collection seeded with the given items.
func New[T any](id func(T) string, seed ...T) *Collection[T] {
	return &Collection[T]{
		id:    id,
		items: slices.Clone(seed),
	}
}

func (c *Collection[T]) index(id string) int {
	return slices.IndexFunc(c.items, func(v T) bool { return c.id(v) == id })
}

// List returns the page of items that match q.
func (c *Collection[T]) List(q Query[T]) Page[T] {
	c.mu.RLock()
	matched := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if q.Match == nil || q.Match(v) {
			matched = append(matched, v)
		}
	}
	c.mu.RUnlock()

	if q.Less != nil {
		slices.SortStableFunc(matched, func(a, b T) int {
			switch {
			case q.Less(a, b):
				return -1
			case q.Less(b, a):
				return 1
			default:
				return 0
			}
		})
	}

	return Paginate(matched, q.Limit, q.Offset)
}

// Paginate cuts one page out of items. A non-positive limit means
// DefaultLimit and limits above MaxLimit are capped.
func Paginate[T any](items []T, limit, offset int) Page[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	offset = max(offset, 0)

	page := Page[T]{
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
		Items:  []T{},
	}
	if offset < len(items) {
		end := min(offset+limit, len(items))
		page.Items = items[offset:end]
		page.HasMore = end < len(items)
	}
	return page
}

// All returns a copy of every item.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Get returns the item with the given ID.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return c.items[i], nil
}

// Create appends item. The check function, if set, runs under the write
// lock against the current items and may reject the insert.
func (c *Collection[T]) Create(item T, check func(existing []T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index(c.id(item)) >= 0 {
		return errors.Wrapf(ErrExists, "id %q", c.id(item))
	}
	if check != nil {
		if err := check(c.items); err != nil {
			return err
		}
	}
	c.items = append(c.items, item)
	return nil
}

// Update applies fn to a copy of the stored item and stores the result if
// fn succeeds. The check function, if set, sees the updated item and the
// current items under the write lock.
func (c *Collection[T]) Update(id string, fn func(*T) error, check func(updated T, existing []T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	v := c.items[i]
	if err := fn(&v); err != nil {
		return zero, err
	}
	if check != nil {
		if err := check(v, c.items); err != nil {
			return zero, err
		}
	}
	c.items[i] = v
	return v, nil
}

// Delete removes and returns the item with the given ID.
func (c *Collection[T]) Delete(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	v := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return v, nil
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
