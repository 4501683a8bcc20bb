// Package table manages the dining room floor plan.
package table

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/collection"
	"github.com/xenking/posify/internal/domain/customer"
)

// Status is the occupancy state of a table.
type Status string

const (
	Available Status = "available"
	Occupied  Status = "occupied"
	Reserved  Status = "reserved"
	Cleaning  Status = "cleaning"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case Available, Occupied, Reserved, Cleaning:
		return true
	default:
		return false
	}
}

// Sentinel errors for table operations.
var (
	ErrInvalidStatus   = errors.New("invalid table status")
	ErrInvalidCapacity = errors.New("capacity must be greater than 0")
	ErrInvalidNumber   = errors.New("table number must be greater than 0")
	ErrInUse           = errors.New("table is not available")
)

// DuplicateNumberError indicates another table already has the number.
type DuplicateNumberError struct {
	Number int
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("table number %d already exists", e.Number)
}

// Table is a seating position in the restaurant.
type Table struct {
	ID       string             `json:"id"`
	Number   int                `json:"number"`
	Capacity int                `json:"capacity"`
	Status   Status             `json:"status"`
	Customer *customer.Customer `json:"customer,omitempty"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t.Customer != nil {
		c := t.Customer.Clone()
		t.Customer = &c
	}
	return t
}

// Validate checks the fields of a table.
func Validate(t Table) error {
	if t.Number < 1 {
		return ErrInvalidNumber
	}
	if t.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if !t.Status.Valid() {
		return errors.Wrapf(ErrInvalidStatus, "%q", t.Status)
	}
	return nil
}

// Floor is the in-memory set of tables.
type Floor struct {
	tables *collection.Collection[Table]
}

// NewFloor creates a floor seeded with tables.
func NewFloor(seed ...Table) *Floor {
	return &Floor{
		tables: collection.New(func(t Table) string { return t.ID }, seed...),
	}
}

func checkNumber(t Table, existing []Table) error {
	for _, other := range existing {
		if other.ID != t.ID && other.Number == t.Number {
			return &DuplicateNumberError{Number: t.Number}
		}
	}
	return nil
}

// Create adds a table. An empty status defaults to available.
func (f *Floor) Create(t Table) (Table, error) {
	if t.Status == "" {
		t.Status = Available
	}
	if err := Validate(t); err != nil {
		return Table{}, err
	}
	err := f.tables.Create(t, func(existing []Table) error {
		return checkNumber(t, existing)
	})
	if err != nil {
		return Table{}, err
	}
	return t.Clone(), nil
}

// Get returns a table by ID.
func (f *Floor) Get(id string) (Table, error) {
	t, err := f.tables.Get(id)
	if err != nil {
		return Table{}, err
	}
	return t.Clone(), nil
}

// Update applies fn to the table. Moving a table back to available
// releases its customer.
func (f *Floor) Update(id string, fn func(*Table)) (Table, error) {
	t, err := f.tables.Update(id, func(t *Table) error {
		fn(t)
		t.ID = id
		if t.Status == Available {
			t.Customer = nil
		}
		return Validate(*t)
	}, checkNumber)
	if err != nil {
		return Table{}, err
	}
	return t.Clone(), nil
}

// SetStatus changes the status of a table.
func (f *Floor) SetStatus(id string, status Status) (Table, error) {
	if !status.Valid() {
		return Table{}, errors.Wrapf(ErrInvalidStatus, "%q", status)
	}
	return f.Update(id, func(t *Table) { t.Status = status })
}

// Assign seats a customer at the table and marks it occupied.
func (f *Floor) Assign(id string, c customer.Customer) (Table, error) {
	c = c.Clone()
	return f.Update(id, func(t *Table) {
		t.Customer = &c
		t.Status = Occupied
	})
}

// Delete removes a table. Only available tables can be removed.
func (f *Floor) Delete(id string) (Table, error) {
	t, err := f.tables.Get(id)
	if err != nil {
		return Table{}, err
	}
	if t.Status != Available {
		return Table{}, errors.Wrapf(ErrInUse, "table %d is %s", t.Number, t.Status)
	}
	return f.tables.Delete(id)
}

// List returns tables ordered by number, optionally filtered by status.
func (f *Floor) List(status Status, limit, offset int) collection.Page[Table] {
	return f.tables.List(collection.Query[Table]{
		Match: func(t Table) bool {
			return status == "" || status == "all" || t.Status == status
		},
		Less:   func(a, b Table) bool { return a.Number < b.Number },
		Limit:  limit,
		Offset: offset,
	})
}

// Summary counts tables per status.
func (f *Floor) Summary() map[Status]int {
	out := map[Status]int{Available: 0, Occupied: 0, Reserved: 0, Cleaning: 0}
	for _, t := range f.tables.All() {
		out[t.Status]++
	}
	return out
}

// DefaultTables returns the sample floor plan.
func DefaultTables() []Table {
	guest := func(id, name, phone string) *customer.Customer {
		return &customer.Customer{ID: id, Name: name, Phone: phone}
	}
	return []Table{
		{ID: "table-1", Number: 1, Capacity: 2, Status: Available},
		{ID: "table-2", Number: 2, Capacity: 4, Status: Occupied, Customer: guest("c1", "John Doe", "123-456-7890")},
		{ID: "table-3", Number: 3, Capacity: 6, Status: Reserved, Customer: guest("c2", "Jane Smith", "098-765-4321")},
		{ID: "table-4", Number: 4, Capacity: 4, Status: Available},
		{ID: "table-5", Number: 5, Capacity: 2, Status: Cleaning},
		{ID: "table-6", Number: 6, Capacity: 8, Status: Available},
		{ID: "table-7", Number: 7, Capacity: 4, Status: Occupied, Customer: guest("c3", "Bob Wilson", "")},
		{ID: "table-8", Number: 8, Capacity: 2, Status: Available},
	}
}
