package cart

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/posify/internal/domain/menu"
)

func testItem(id string) menu.Item {
	return menu.Item{
		ID:          id,
		Name:        "item " + id,
		Price:       decimal.NewFromInt(10),
		Category:    "mains",
		Type:        menu.Veg,
		Available:   true,
		Ingredients: []string{"a", "b"},
	}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("cart-%d", n)
	}
}

func TestAdd_MergesSameItem(t *testing.T) {
	var c Cart
	ids := seqIDs()

	first, ok := c.Add(testItem("1"), 2, ids)
	require.True(t, ok)
	second, ok := c.Add(testItem("1"), 3, ids)
	require.True(t, ok)

	assert.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Lines()[0].Quantity)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	var c Cart
	ids := seqIDs()
	c.Add(testItem("b"), 1, ids)
	c.Add(testItem("a"), 1, ids)
	c.Add(testItem("b"), 1, ids)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].MenuItem.ID)
	assert.Equal(t, "a", lines[1].MenuItem.ID)
	assert.Equal(t, 3, c.ItemCount())
}

func TestAdd_NonPositiveQuantityIsNoop(t *testing.T) {
	var c Cart
	for _, qty := range []int{0, -1} {
		_, ok := c.Add(testItem("1"), qty, func() string {
			t.Fatal("id generator must not be called")
			return ""
		})
		assert.False(t, ok)
	}
	assert.Zero(t, c.Len())
}

func TestUpdateQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		t.Run(fmt.Sprintf("qty %d removes", qty), func(t *testing.T) {
			var c Cart
			l, _ := c.Add(testItem("1"), 2, seqIDs())
			require.NoError(t, c.UpdateQuantity(l.ID, qty))
			assert.Zero(t, c.Len())
		})
	}

	t.Run("sets exact quantity", func(t *testing.T) {
		var c Cart
		l, _ := c.Add(testItem("1"), 2, seqIDs())
		require.NoError(t, c.UpdateQuantity(l.ID, 7))
		assert.Equal(t, 7, c.Lines()[0].Quantity)
	})

	t.Run("unknown line", func(t *testing.T) {
		var c Cart
		c.Add(testItem("1"), 2, seqIDs())
		before := c.Lines()
		err := c.UpdateQuantity("missing", 3)
		assert.ErrorIs(t, err, ErrLineNotFound)
		assert.Equal(t, before, c.Lines())
	})
}

func TestRemove(t *testing.T) {
	var c Cart
	l, _ := c.Add(testItem("1"), 1, seqIDs())
	c.Add(testItem("2"), 1, seqIDs())

	assert.False(t, c.Remove("missing"))
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Remove(l.ID))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "2", c.Lines()[0].MenuItem.ID)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestLines_DeepCopy(t *testing.T) {
	var c Cart
	c.Add(testItem("1"), 1, seqIDs())

	lines := c.Lines()
	lines[0].Quantity = 99
	lines[0].MenuItem.Ingredients[0] = "changed"

	fresh := c.Lines()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, "a", fresh[0].MenuItem.Ingredients[0])
}

func TestNew_NormalizesStoredLines(t *testing.T) {
	c := New([]Line{
		{ID: "l1", MenuItem: testItem("1"), Quantity: 1},
		{ID: "l2", MenuItem: testItem("2"), Quantity: 0},
		{ID: "l3", MenuItem: testItem("1"), Quantity: 2},
	})
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "l1", lines[0].ID)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestSetInstructions(t *testing.T) {
	var c Cart
	l, _ := c.Add(testItem("1"), 1, seqIDs())
	require.NoError(t, c.SetInstructions(l.ID, "no onions"))

	got, err := c.Line(l.ID)
	require.NoError(t, err)
	assert.Equal(t, "no onions", got.SpecialInstructions)
	assert.ErrorIs(t, c.SetInstructions("missing", "x"), ErrLineNotFound)
}

func TestAdd_MergeTakesCurrentItem(t *testing.T) {
	var c Cart
	ids := seqIDs()
	c.Add(testItem("1"), 1, ids)

	repriced := testItem("1")
	repriced.Price = decimal.NewFromInt(12)
	c.Add(repriced, 1, ids)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].MenuItem.Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestRefresh(t *testing.T) {
	var c Cart
	ids := seqIDs()
	c.Add(testItem("1"), 1, ids)
	c.Add(testItem("2"), 2, ids)
	c.Add(testItem("3"), 3, ids)

	current := map[string]menu.Item{
		"1": testItem("1"),
		"3": testItem("3"),
	}
	off := current["3"]
	off.Price = decimal.NewFromInt(99)
	off.Available = false
	current["3"] = off
	lookup := func(id string) (menu.Item, bool) {
		item, ok := current[id]
		return item, ok
	}

	removed, changed := c.Refresh(lookup)
	assert.True(t, changed)
	require.Len(t, removed, 1)
	assert.Equal(t, "2", removed[0].MenuItem.ID)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].MenuItem.ID)
	assert.Equal(t, "3", lines[1].MenuItem.ID)
	assert.Equal(t, 3, lines[1].Quantity)
	assert.True(t, lines[1].MenuItem.Price.Equal(decimal.NewFromInt(99)))
	assert.False(t, lines[1].MenuItem.Available)

	removed, changed = c.Refresh(lookup)
	assert.False(t, changed)
	assert.Empty(t, removed)
}
