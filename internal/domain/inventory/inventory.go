// Package inventory tracks ingredient stock levels.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/collection"
)

// StockStatus is derived from the current and minimum stock.
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

// Defaults applied to new items that omit stock bounds.
const (
	DefaultMinStock = 10
	DefaultMaxStock = 100
)

// StatusOf classifies a stock level.
func StatusOf(current, minimum int) StockStatus {
	switch {
	case current <= 0:
		return OutOfStock
	case current <= minimum:
		return LowStock
	default:
		return InStock
	}
}

// Item is a stocked ingredient or supply.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CurrentStock  int             `json:"currentStock"`
	MinStock      int             `json:"minStock"`
	MaxStock      int             `json:"maxStock"`
	Unit          string          `json:"unit"`
	CostPerUnit   decimal.Decimal `json:"costPerUnit"`
	Supplier      string          `json:"supplier"`
	LastRestocked time.Time       `json:"lastRestocked"`
	ExpiryDate    *time.Time      `json:"expiryDate"`
	Status        StockStatus     `json:"status"`
}

// Value is the cost of the current stock.
func (i Item) Value() decimal.Decimal {
	return i.CostPerUnit.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}

// ValidationError lists every problem found in an item.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid inventory item: " + strings.Join(e.Problems, "; ")
}

// Validate checks the required fields of an item.
func Validate(i Item) error {
	var problems []string
	if strings.TrimSpace(i.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(i.Category) == "" {
		problems = append(problems, "category is required")
	}
	if strings.TrimSpace(i.Unit) == "" {
		problems = append(problems, "unit is required")
	}
	if !i.CostPerUnit.IsPositive() {
		problems = append(problems, "cost per unit must be greater than 0")
	}
	if i.CurrentStock < 0 || i.MinStock < 0 || i.MaxStock < 0 {
		problems = append(problems, "stock levels must not be negative")
	}
	if i.MaxStock < i.MinStock {
		problems = append(problems, "max stock must not be below min stock")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Stats summarises the whole inventory.
type Stats struct {
	TotalItems int             `json:"totalItems"`
	LowStock   int             `json:"lowStock"`
	OutOfStock int             `json:"outOfStock"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// Filter selects items for listing. Zero fields match everything.
type Filter struct {
	Search   string
	Category string
	Status   StockStatus
}

// Match reports whether i passes the filter.
func (f Filter) Match(i Item) bool {
	if f.Category != "" && f.Category != "all" && i.Category != f.Category {
		return false
	}
	if f.Status != "" && f.Status != "all" && i.Status != f.Status {
		return false
	}
	if q := strings.ToLower(f.Search); q != "" {
		return strings.Contains(strings.ToLower(i.Name), q) ||
			strings.Contains(strings.ToLower(i.Supplier), q)
	}
	return true
}

func lessBy(mode string) func(a, b Item) bool {
	switch mode {
	case "name":
		return func(a, b Item) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "stock":
		return func(a, b Item) bool { return a.CurrentStock > b.CurrentStock }
	case "expiry":
		// Items without an expiry date sort last.
		return func(a, b Item) bool {
			if a.ExpiryDate == nil || b.ExpiryDate == nil {
				return a.ExpiryDate != nil && b.ExpiryDate == nil
			}
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	case "cost":
		return func(a, b Item) bool { return a.CostPerUnit.GreaterThan(b.CostPerUnit) }
	default:
		return nil
	}
}

// Stock is the in-memory inventory. Item status is recomputed on every
// write.
type Stock struct {
	items *collection.Collection[Item]
}

// NewStock creates an inventory seeded with items.
func NewStock(seed ...Item) *Stock {
	for i := range seed {
		seed[i].Status = StatusOf(seed[i].CurrentStock, seed[i].MinStock)
	}
	return &Stock{
		items: collection.New(func(i Item) string { return i.ID }, seed...),
	}
}

// Create validates and stores a new item. Missing stock bounds get the
// defaults.
func (s *Stock) Create(i Item) (Item, error) {
	if i.MinStock == 0 {
		i.MinStock = DefaultMinStock
	}
	if i.MaxStock == 0 {
		i.MaxStock = DefaultMaxStock
	}
	if err := Validate(i); err != nil {
		return Item{}, err
	}
	i.Status = StatusOf(i.CurrentStock, i.MinStock)
	if err := s.items.Create(i, nil); err != nil {
		return Item{}, err
	}
	return i, nil
}

// Get returns an item by ID.
func (s *Stock) Get(id string) (Item, error) {
	return s.items.Get(id)
}

// Update applies fn and recomputes the stock status.
func (s *Stock) Update(id string, fn func(*Item)) (Item, error) {
	return s.items.Update(id, func(i *Item) error {
		fn(i)
		i.ID = id
		if err := Validate(*i); err != nil {
			return err
		}
		i.Status = StatusOf(i.CurrentStock, i.MinStock)
		return nil
	}, nil)
}

// Delete removes an item.
func (s *Stock) Delete(id string) (Item, error) {
	return s.items.Delete(id)
}

// List returns a page of items matching f ordered by sortBy.
func (s *Stock) List(f Filter, sortBy string, limit, offset int) collection.Page[Item] {
	return s.items.List(collection.Query[Item]{
		Match:  f.Match,
		Less:   lessBy(sortBy),
		Limit:  limit,
		Offset: offset,
	})
}

// Stats summarises every item regardless of filters.
func (s *Stock) Stats() Stats {
	st := Stats{TotalValue: decimal.Zero}
	for _, i := range s.items.All() {
		st.TotalItems++
		switch i.Status {
		case LowStock:
			st.LowStock++
		case OutOfStock:
			st.OutOfStock++
		}
		st.TotalValue = st.TotalValue.Add(i.Value())
	}
	return st
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// DefaultItems returns the sample inventory.
func DefaultItems() []Item {
	return []Item{
		{
			ID: "item_1", Name: "Fresh Beef Patties", Category: "meat",
			CurrentStock: 45, MinStock: 20, MaxStock: 100, Unit: "pieces",
			CostPerUnit: decimal.RequireFromString("3.50"), Supplier: "Local Meat Co.",
			LastRestocked: day("2024-11-15"), ExpiryDate: dayPtr("2024-11-25"),
		},
		{
			ID: "item_2", Name: "Burger Buns", Category: "bakery",
			CurrentStock: 12, MinStock: 30, MaxStock: 150, Unit: "pieces",
			CostPerUnit: decimal.RequireFromString("0.75"), Supplier: "Fresh Bakery Ltd.",
			LastRestocked: day("2024-11-18"), ExpiryDate: dayPtr("2024-11-22"),
		},
		{
			ID: "item_3", Name: "Lettuce", Category: "vegetables",
			CurrentStock: 8, MinStock: 15, MaxStock: 50, Unit: "heads",
			CostPerUnit: decimal.RequireFromString("1.25"), Supplier: "Green Valley Farms",
			LastRestocked: day("2024-11-17"), ExpiryDate: dayPtr("2024-11-24"),
		},
		{
			ID: "item_4", Name: "Cheddar Cheese", Category: "dairy",
			CurrentStock: 0, MinStock: 10, MaxStock: 40, Unit: "kg",
			CostPerUnit: decimal.RequireFromString("8.50"), Supplier: "Dairy Fresh Co.",
			LastRestocked: day("2024-11-10"), ExpiryDate: dayPtr("2024-11-20"),
		},
	}
}
