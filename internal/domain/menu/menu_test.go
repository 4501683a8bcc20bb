package menu

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/posify/internal/collection"
)

func validItem() Item {
	return Item{
		ID:        "x",
		Name:      "Soup",
		Price:     decimal.RequireFromString("4.50"),
		Category:  "mains",
		Type:      Veg,
		Available: true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Item)
		problems int
	}{
		{name: "valid", mutate: func(*Item) {}},
		{name: "valid with discount", mutate: func(i *Item) { i.Discount = pct(100) }},
		{name: "missing name", mutate: func(i *Item) { i.Name = "  " }, problems: 1},
		{name: "zero price", mutate: func(i *Item) { i.Price = decimal.Zero }, problems: 1},
		{name: "bad type", mutate: func(i *Item) { i.Type = "vegan" }, problems: 1},
		{name: "discount above range", mutate: func(i *Item) { i.Discount = pct(101) }, problems: 1},
		{name: "negative discount", mutate: func(i *Item) { i.Discount = pct(-1) }, problems: 1},
		{
			name: "everything wrong",
			mutate: func(i *Item) {
				*i = Item{Price: decimal.NewFromInt(-1), PreparationTime: -3}
			},
			problems: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)

			err := Validate(item)
			if tt.problems == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Problems, tt.problems)
		})
	}
}

func TestDefaultItemsAreValid(t *testing.T) {
	items := DefaultItems()
	require.Len(t, items, 8)
	for _, item := range items {
		assert.NoError(t, Validate(item), item.ID)
	}
}

func TestFilter_Match(t *testing.T) {
	items := DefaultItems()
	items[7].Available = false

	count := func(f Filter) int {
		n := 0
		for _, item := range items {
			if f.Match(item) {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 8, count(Filter{}))
	assert.Equal(t, 7, count(Filter{OnlyAvailable: true}))
	assert.Equal(t, 2, count(Filter{Category: "burgers"}))
	assert.Equal(t, 8, count(Filter{Category: CategoryAll}))
	assert.Equal(t, 5, count(Filter{Diet: "veg"}))
	assert.Equal(t, 3, count(Filter{Diet: "non-veg"}))
	// Matches ingredients as well as names.
	assert.Equal(t, 1, count(Filter{Search: "TUNA"}))
	assert.Equal(t, 1, count(Filter{Search: "guacamole"}))
	assert.Equal(t, 1, count(Filter{Search: "pizzas"}))
}

func TestCatalog_ListSorted(t *testing.T) {
	c := NewCatalog(DefaultItems()...)

	page := c.List(collection.Query[Item]{Less: SortBy("price"), Limit: 2})
	require.Len(t, page.Items, 2)
	assert.Equal(t, "8", page.Items[0].ID)
	assert.Equal(t, "5", page.Items[1].ID)
	assert.True(t, page.HasMore)
	assert.Nil(t, SortBy("unknown"))
}

func TestClone(t *testing.T) {
	item := DefaultItems()[0]
	clone := item.Clone()
	clone.Ingredients[0] = "changed"
	assert.NotEqual(t, item.Ingredients[0], clone.Ingredients[0])
}

func TestItem_Equal(t *testing.T) {
	item := DefaultItems()[0]
	assert.True(t, item.Equal(item.Clone()))

	repriced := item.Clone()
	repriced.Price = repriced.Price.Add(decimal.NewFromInt(1))
	assert.False(t, item.Equal(repriced))

	// Same value at a different scale.
	rescaled := item.Clone()
	rescaled.Price = decimal.RequireFromString(item.Price.StringFixed(4))
	assert.True(t, item.Equal(rescaled))

	discounted := item.Clone()
	discounted.Discount = decimal.NewNullDecimal(decimal.NewFromInt(5))
	assert.False(t, item.Equal(discounted))

	off := item.Clone()
	off.Available = !item.Available
	assert.False(t, item.Equal(off))
}
