package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/menu"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(id, price string, qty int, discount ...int64) cart.Line {
	item := menu.Item{ID: id, Price: d(price)}
	if len(discount) > 0 {
		item.Discount = decimal.NewNullDecimal(decimal.NewFromInt(discount[0]))
	}
	return cart.Line{ID: "line-" + id, MenuItem: item, Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name    string
		item    menu.Item
		want    string
		wantErr bool
	}{
		{name: "no discount", item: menu.Item{Price: d("17.99")}, want: "17.99"},
		{
			name: "twenty percent",
			item: menu.Item{Price: d("10"), Discount: decimal.NewNullDecimal(d("20"))},
			want: "8",
		},
		{
			name: "full discount",
			item: menu.Item{Price: d("10"), Discount: decimal.NewNullDecimal(d("100"))},
			want: "0",
		},
		{
			name:    "above range",
			item:    menu.Item{Price: d("10"), Discount: decimal.NewNullDecimal(d("120"))},
			wantErr: true,
		},
		{
			name:    "negative",
			item:    menu.Item{Price: d("10"), Discount: decimal.NewNullDecimal(d("-5"))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectivePrice(tt.item)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDiscount)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestCartTotals_TaxOnly(t *testing.T) {
	totals, err := CartTotals([]cart.Line{line("1", "10.00", 2)}, Rates{Tax: d("0.08")})
	require.NoError(t, err)

	r := totals.Rounded()
	assert.Equal(t, "20.00", r.Subtotal.StringFixed(2))
	assert.Equal(t, "1.60", r.Tax.StringFixed(2))
	assert.Equal(t, "21.60", r.Total.StringFixed(2))
	assert.True(t, r.Service.IsZero())
}

func TestCartTotals_ServiceIsTaxed(t *testing.T) {
	totals, err := CartTotals([]cart.Line{line("1", "100", 1)}, Rates{Tax: d("0.08"), Service: d("0.10")})
	require.NoError(t, err)

	assertDecimal(t, "100", totals.Subtotal)
	assertDecimal(t, "10", totals.Service)
	assertDecimal(t, "8.8", totals.Tax)
	assertDecimal(t, "118.8", totals.Total)
}

func TestCartTotals_Discount(t *testing.T) {
	totals, err := CartTotals([]cart.Line{line("1", "17.99", 2, 20)}, Rates{})
	require.NoError(t, err)

	assertDecimal(t, "28.784", totals.Subtotal)
	assertDecimal(t, "7.196", totals.Discount)
	assert.Equal(t, "28.78", totals.Rounded().Total.StringFixed(2))
}

func TestCartTotals_Linear(t *testing.T) {
	rates := Rates{Tax: d("0.0825"), Service: d("0.125")}
	a := []cart.Line{line("1", "17.99", 3, 20), line("2", "0.07", 11)}
	b := []cart.Line{line("3", "23.99", 1), line("4", "10.59", 7, 15)}

	ta, err := CartTotals(a, rates)
	require.NoError(t, err)
	tb, err := CartTotals(b, rates)
	require.NoError(t, err)
	tab, err := CartTotals(append(append([]cart.Line{}, a...), b...), rates)
	require.NoError(t, err)

	assert.True(t, tab.Subtotal.Equal(ta.Subtotal.Add(tb.Subtotal)))
	assert.True(t, tab.Service.Equal(ta.Service.Add(tb.Service)))
	assert.True(t, tab.Tax.Equal(ta.Tax.Add(tb.Tax)))
	assert.True(t, tab.Total.Equal(ta.Total.Add(tb.Total)))
}

func TestCartTotals_Empty(t *testing.T) {
	totals, err := CartTotals(nil, Rates{Tax: d("0.08"), Service: d("0.1")})
	require.NoError(t, err)
	assert.True(t, totals.Total.IsZero())
}

func TestCartTotals_InvalidDiscount(t *testing.T) {
	_, err := CartTotals([]cart.Line{line("1", "5", 1, 150)}, Rates{})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}
