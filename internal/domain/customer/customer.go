// Package customer holds the customer directory.
package customer

import (
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/collection"
)

// Sentinel errors for customer validation.
var (
	ErrNameRequired = errors.New("customer name is required")
)

// DuplicateError indicates another customer already uses the phone or email.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return "customer with " + e.Field + " " + e.Value + " already exists"
}

// SpiceLevel is a customer's taste preference.
type SpiceLevel string

const (
	SpiceMild   SpiceLevel = "mild"
	SpiceMedium SpiceLevel = "medium"
	SpiceHot    SpiceLevel = "hot"
)

// Preferences are remembered choices of a regular customer.
type Preferences struct {
	FavoriteCategory    string     `json:"favoriteCategory"`
	DietaryRestrictions []string   `json:"dietaryRestrictions"`
	SpiceLevel          SpiceLevel `json:"spiceLevel"`
}

// Customer is a known guest. It is attached to tables and orders by value.
type Customer struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email,omitempty"`
	LoyaltyPoints int             `json:"loyaltyPoints"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	Preferences   Preferences     `json:"preferences"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastOrderAt   *time.Time      `json:"lastOrderAt"`
}

// Clone returns a deep copy of the customer.
func (c Customer) Clone() Customer {
	c.Preferences.DietaryRestrictions = slices.Clone(c.Preferences.DietaryRestrictions)
	if c.LastOrderAt != nil {
		t := *c.LastOrderAt
		c.LastOrderAt = &t
	}
	return c
}

// Validate checks a customer before it is stored.
func Validate(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Directory is the in-memory customer list.
type Directory struct {
	items *collection.Collection[Customer]
}

// NewDirectory creates a directory seeded with customers.
func NewDirectory(seed ...Customer) *Directory {
	return &Directory{
		items: collection.New(func(c Customer) string { return c.ID }, seed...),
	}
}

func checkUnique(existing []Customer, c Customer) error {
	for _, other := range existing {
		if other.ID == c.ID {
			continue
		}
		if c.Phone != "" && other.Phone == c.Phone {
			return &DuplicateError{Field: "phone", Value: c.Phone}
		}
		if c.Email != "" && strings.EqualFold(other.Email, c.Email) {
			return &DuplicateError{Field: "email", Value: c.Email}
		}
	}
	return nil
}

// Create validates and stores a new customer.
func (d *Directory) Create(c Customer) error {
	if err := Validate(c); err != nil {
		return err
	}
	return d.items.Create(c, func(existing []Customer) error {
		return checkUnique(existing, c)
	})
}

// Get returns a customer by ID.
func (d *Directory) Get(id string) (Customer, error) {
	c, err := d.items.Get(id)
	if err != nil {
		return Customer{}, err
	}
	return c.Clone(), nil
}

// Update applies fn to the customer and stores it if it stays valid and
// unique.
func (d *Directory) Update(id string, fn func(*Customer)) (Customer, error) {
	return d.items.Update(id, func(c *Customer) error {
		fn(c)
		c.ID = id
		return Validate(*c)
	}, func(updated Customer, existing []Customer) error {
		return checkUnique(existing, updated)
	})
}

// Delete removes a customer.
func (d *Directory) Delete(id string) (Customer, error) {
	return d.items.Delete(id)
}

// List returns a page of customers matching search, ordered by sortBy.
func (d *Directory) List(search, sortBy string, limit, offset int) collection.Page[Customer] {
	q := strings.ToLower(strings.TrimSpace(search))
	return d.items.List(collection.Query[Customer]{
		Match: func(c Customer) bool {
			if q == "" {
				return true
			}
			return strings.Contains(strings.ToLower(c.Name), q) ||
				strings.Contains(c.Phone, q) ||
				strings.Contains(strings.ToLower(c.Email), q)
		},
		Less:   lessBy(sortBy),
		Limit:  limit,
		Offset: offset,
	})
}

func lessBy(mode string) func(a, b Customer) bool {
	switch mode {
	case "", "name":
		return func(a, b Customer) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "loyaltyPoints":
		return func(a, b Customer) bool { return a.LoyaltyPoints > b.LoyaltyPoints }
	case "totalSpent":
		return func(a, b Customer) bool { return a.TotalSpent.GreaterThan(b.TotalSpent) }
	case "lastOrder":
		return func(a, b Customer) bool {
			if a.LastOrderAt == nil || b.LastOrderAt == nil {
				return a.LastOrderAt != nil && b.LastOrderAt == nil
			}
			return a.LastOrderAt.After(*b.LastOrderAt)
		}
	default:
		return nil
	}
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

// DefaultCustomers returns the sample customer list.
func DefaultCustomers() []Customer {
	return []Customer{
		{
			ID:            "cust_1",
			Name:          "John Doe",
			Phone:         "555-0123",
			Email:         "john.doe@email.com",
			LoyaltyPoints: 150,
			TotalOrders:   12,
			TotalSpent:    decimal.RequireFromString("485.50"),
			Preferences: Preferences{
				FavoriteCategory:    "burgers",
				DietaryRestrictions: []string{},
				SpiceLevel:          SpiceMedium,
			},
			CreatedAt:   date("2024-01-15"),
			LastOrderAt: datePtr("2024-11-18"),
		},
		{
			ID:            "cust_2",
			Name:          "Jane Smith",
			Phone:         "555-0456",
			Email:         "jane.smith@email.com",
			LoyaltyPoints: 89,
			TotalOrders:   7,
			TotalSpent:    decimal.RequireFromString("298.75"),
			Preferences: Preferences{
				FavoriteCategory:    "salads",
				DietaryRestrictions: []string{"vegetarian"},
				SpiceLevel:          SpiceMild,
			},
			CreatedAt:   date("2024-02-10"),
			LastOrderAt: datePtr("2024-11-17"),
		},
	}
}
