package table

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/posify/internal/collection"
	"github.com/xenking/posify/internal/domain/customer"
)

func TestFloor_Create(t *testing.T) {
	f := NewFloor(DefaultTables()...)

	created, err := f.Create(Table{ID: "table-9", Number: 9, Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, Available, created.Status)

	_, err = f.Create(Table{ID: "table-x", Number: 9, Capacity: 4})
	var dup *DuplicateNumberError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 9, dup.Number)

	_, err = f.Create(Table{ID: "table-y", Number: 10})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = f.Create(Table{ID: "table-z", Number: 11, Capacity: 2, Status: "broken"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestFloor_AssignAndRelease(t *testing.T) {
	f := NewFloor(DefaultTables()...)

	got, err := f.Assign("table-1", customer.Customer{ID: "cust_1", Name: "John Doe"})
	require.NoError(t, err)
	assert.Equal(t, Occupied, got.Status)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "John Doe", got.Customer.Name)

	got, err = f.SetStatus("table-1", Cleaning)
	require.NoError(t, err)
	assert.NotNil(t, got.Customer, "cleaning keeps the customer")

	got, err = f.SetStatus("table-1", Available)
	require.NoError(t, err)
	assert.Nil(t, got.Customer)

	_, err = f.SetStatus("table-1", "nope")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.SetStatus("missing", Available)
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestFloor_Delete(t *testing.T) {
	f := NewFloor(DefaultTables()...)

	_, err := f.Delete("table-2")
	assert.ErrorIs(t, err, ErrInUse)

	_, err = f.Delete("table-1")
	require.NoError(t, err)
	_, err = f.Get("table-1")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestFloor_ListAndSummary(t *testing.T) {
	f := NewFloor(DefaultTables()...)

	page := f.List(Available, 0, 0)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.Items[0].Number)

	assert.Equal(t, 8, f.List("all", 0, 0).Total)

	summary := f.Summary()
	assert.Equal(t, 4, summary[Available])
	assert.Equal(t, 2, summary[Occupied])
	assert.Equal(t, 1, summary[Reserved])
	assert.Equal(t, 1, summary[Cleaning])
}
