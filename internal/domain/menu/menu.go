// Package menu defines the restaurant menu catalog.
package menu

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/collection"
)

// DietType is the dietary classification of a menu item.
type DietType string

const (
	Veg    DietType = "Veg"
	NonVeg DietType = "Non Veg"
)

// Valid reports whether d is a known dietary type.
func (d DietType) Valid() bool {
	return d == Veg || d == NonVeg
}

// Item is a single dish on the menu.
type Item struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Price           decimal.Decimal     `json:"price"`
	Discount        decimal.NullDecimal `json:"discount"`
	Category        string              `json:"category"`
	Image           string              `json:"image,omitempty"`
	Type            DietType            `json:"type"`
	Available       bool                `json:"available"`
	PreparationTime int                 `json:"preparationTime,omitempty"`
	Ingredients     []string            `json:"ingredients,omitempty"`
	Allergens       []string            `json:"allergens,omitempty"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Ingredients = slices.Clone(i.Ingredients)
	i.Allergens = slices.Clone(i.Allergens)
	return i
}

// Equal reports whether i and other describe the same item state.
func (i Item) Equal(other Item) bool {
	return i.ID == other.ID &&
		i.Name == other.Name &&
		i.Description == other.Description &&
		i.Price.Equal(other.Price) &&
		i.Discount.Valid == other.Discount.Valid &&
		(!i.Discount.Valid || i.Discount.Decimal.Equal(other.Discount.Decimal)) &&
		i.Category == other.Category &&
		i.Image == other.Image &&
		i.Type == other.Type &&
		i.Available == other.Available &&
		i.PreparationTime == other.PreparationTime &&
		slices.Equal(i.Ingredients, other.Ingredients) &&
		slices.Equal(i.Allergens, other.Allergens)
}

// HasDiscount reports whether a non-zero discount is set.
func (i Item) HasDiscount() bool {
	return i.Discount.Valid && !i.Discount.Decimal.IsZero()
}

// Category is a menu section shown in the category filter.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryAll matches every item.
const CategoryAll = "all"

// Categories returns the fixed list of menu sections.
func Categories() []Category {
	return []Category{
		{ID: CategoryAll, Name: "All Items"},
		{ID: "appetizers", Name: "Appetizers"},
		{ID: "mains", Name: "Main Course"},
		{ID: "desserts", Name: "Desserts"},
		{ID: "beverages", Name: "Beverages"},
		{ID: "salads", Name: "Salads"},
		{ID: "burgers", Name: "Burgers"},
		{ID: "pizzas", Name: "Pizzas"},
	}
}

// Catalog is the in-memory menu.
type Catalog = collection.Collection[Item]

// NewCatalog creates a catalog seeded with items.
func NewCatalog(items ...Item) *Catalog {
	return collection.New(func(i Item) string { return i.ID }, items...)
}

// Filter selects menu items for listing.
type Filter struct {
	Category string
	// Diet is "veg", "non-veg" or empty.
	Diet          string
	Search        string
	OnlyAvailable bool
}

// Match reports whether item passes the filter.
func (f Filter) Match(item Item) bool {
	if f.OnlyAvailable && !item.Available {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll && item.Category != f.Category {
		return false
	}
	switch strings.ToLower(f.Diet) {
	case "veg":
		if item.Type != Veg {
			return false
		}
	case "non-veg":
		if item.Type != NonVeg {
			return false
		}
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.Category), q) {
		return true
	}
	return slices.ContainsFunc(item.Ingredients, func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	})
}

// SortBy returns an ordering for the named sort mode, or nil for insertion
// order.
func SortBy(mode string) func(a, b Item) bool {
	switch mode {
	case "name":
		return func(a, b Item) bool { return a.Name < b.Name }
	case "price":
		return func(a, b Item) bool { return a.Price.LessThan(b.Price) }
	case "prepTime":
		return func(a, b Item) bool { return a.PreparationTime < b.PreparationTime }
	default:
		return nil
	}
}
