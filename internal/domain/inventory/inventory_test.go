package inventory

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, OutOfStock, StatusOf(0, 10))
	assert.Equal(t, OutOfStock, StatusOf(-2, 10))
	assert.Equal(t, LowStock, StatusOf(10, 10))
	assert.Equal(t, InStock, StatusOf(11, 10))
}

func TestStock_Seed(t *testing.T) {
	s := NewStock(DefaultItems()...)

	st := s.Stats()
	assert.Equal(t, 4, st.TotalItems)
	assert.Equal(t, 2, st.LowStock)
	assert.Equal(t, 1, st.OutOfStock)
	// 45*3.50 + 12*0.75 + 8*1.25 + 0*8.50
	assert.True(t, st.TotalValue.Equal(decimal.RequireFromString("176.5")), st.TotalValue.String())
}

func TestStock_CreateAndUpdateRecomputeStatus(t *testing.T) {
	s := NewStock()

	created, err := s.Create(Item{
		ID: "item_9", Name: "Tomatoes", Category: "vegetables", Unit: "kg",
		CurrentStock: 5, CostPerUnit: decimal.RequireFromString("2.10"),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultMinStock, created.MinStock)
	assert.Equal(t, DefaultMaxStock, created.MaxStock)
	assert.Equal(t, LowStock, created.Status)

	updated, err := s.Update("item_9", func(i *Item) { i.CurrentStock = 50 })
	require.NoError(t, err)
	assert.Equal(t, InStock, updated.Status)

	updated, err = s.Update("item_9", func(i *Item) { i.CurrentStock = 0 })
	require.NoError(t, err)
	assert.Equal(t, OutOfStock, updated.Status)

	_, err = s.Update("item_9", func(i *Item) { i.Unit = "" })
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestStock_CreateValidates(t *testing.T) {
	_, err := NewStock().Create(Item{ID: "x"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 4)
}

func TestStock_List(t *testing.T) {
	s := NewStock(DefaultItems()...)

	page := s.List(Filter{Status: LowStock}, "name", 0, 0)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Burger Buns", page.Items[0].Name)

	page = s.List(Filter{Search: "farms"}, "", 0, 0)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "item_3", page.Items[0].ID)

	page = s.List(Filter{}, "expiry", 0, 0)
	assert.Equal(t, "item_4", page.Items[0].ID)

	page = s.List(Filter{}, "cost", 0, 0)
	assert.Equal(t, "item_4", page.Items[0].ID)

	page = s.List(Filter{Category: "dairy"}, "stock", 0, 0)
	assert.Equal(t, 1, page.Total)
}
