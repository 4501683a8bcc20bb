package order

import (
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/pricing"
)

var testNow = time.Date(2024, 11, 18, 12, 30, 0, 0, time.UTC)

func testDraft() Draft {
	return Draft{
		Lines: []cart.Line{{
			ID:       "cart-1",
			MenuItem: menu.Item{ID: "1", Name: "Burger", Price: decimal.NewFromInt(10), Ingredients: []string{"bun"}},
			Quantity: 2,
		}},
		TableID:  "table-4",
		Customer: &customer.Customer{ID: "cust_1", Name: "John Doe"},
		Type:     TypeDineIn,
		Rates:    pricing.Rates{Tax: decimal.RequireFromString("0.08")},
	}
}

func ptr[T any](v T) *T { return &v }

func TestNew(t *testing.T) {
	d := testDraft()
	d.PaymentMethod = &PaymentMethod{Type: PaymentCash}

	o, err := New("order-1", d, testNow)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus, "a supplied method does not mark the order paid")
	assert.Equal(t, "20.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "1.60", o.Tax.StringFixed(2))
	assert.Equal(t, "21.60", o.Total.StringFixed(2))
	assert.Equal(t, testNow, o.CreatedAt)
	assert.Equal(t, testNow, o.UpdatedAt)
	assert.Nil(t, o.ServedAt)

	// The order owns its snapshot.
	d.Lines[0].Quantity = 5
	d.Lines[0].MenuItem.Ingredients[0] = "changed"
	d.Customer.Name = "changed"
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "bun", o.Items[0].MenuItem.Ingredients[0])
	assert.Equal(t, "John Doe", o.Customer.Name)
}

func TestNew_Errors(t *testing.T) {
	d := testDraft()
	d.Lines = nil
	_, err := New("order-1", d, testNow)
	assert.ErrorIs(t, err, ErrCartEmpty)

	d = testDraft()
	d.Type = "drive-through"
	_, err = New("order-1", d, testNow)
	assert.ErrorIs(t, err, ErrInvalidType)

	d = testDraft()
	d.Lines[0].MenuItem.Discount = decimal.NewNullDecimal(decimal.NewFromInt(200))
	_, err = New("order-1", d, testNow)
	assert.ErrorIs(t, err, pricing.ErrInvalidDiscount)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusReady, StatusCancelled, true},
		{StatusPending, StatusPending, true},
		{StatusPending, StatusServed, false},
		{StatusPreparing, StatusPending, false},
		{StatusServed, StatusPending, false},
		{StatusServed, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestApply_FullLifecycle(t *testing.T) {
	o, err := New("order-1", testDraft(), testNow)
	require.NoError(t, err)

	for i, s := range []Status{StatusPreparing, StatusReady, StatusServed} {
		at := testNow.Add(time.Duration(i+1) * time.Minute)
		require.NoError(t, o.Apply(Update{Status: ptr(s)}, at))
		assert.Equal(t, s, o.Status)
		assert.Equal(t, at, o.UpdatedAt)
	}
	require.NotNil(t, o.ServedAt)
	assert.Equal(t, testNow.Add(3*time.Minute), *o.ServedAt)
}

func TestApply_ServedToPendingRejected(t *testing.T) {
	o, err := New("order-1", testDraft(), testNow)
	require.NoError(t, err)
	o.Status = StatusServed
	before := o.Clone()

	err = o.Apply(Update{Status: ptr(StatusPending), SpecialInstructions: ptr("x")}, testNow.Add(time.Hour))
	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, StatusServed, terr.From)
	assert.Equal(t, StatusPending, terr.To)
	assert.Equal(t, before, o, "rejected update changes nothing")
}

func TestApply_Payment(t *testing.T) {
	o, err := New("order-1", testDraft(), testNow)
	require.NoError(t, err)

	err = o.Apply(Update{PaymentStatus: ptr(PaymentRefunded)}, testNow)
	var perr *PaymentTransitionError
	require.True(t, errors.As(err, &perr))

	method := &PaymentMethod{Type: PaymentCard, Details: map[string]any{"last4": "4242"}}
	require.NoError(t, o.Apply(Update{PaymentStatus: ptr(PaymentPaid), PaymentMethod: method}, testNow))
	assert.Equal(t, PaymentPaid, o.PaymentStatus)

	method.Details["last4"] = "0000"
	assert.Equal(t, "4242", o.PaymentMethod.Details["last4"])

	require.NoError(t, o.Apply(Update{PaymentStatus: ptr(PaymentRefunded)}, testNow))
	assert.Equal(t, PaymentRefunded, o.PaymentStatus)

	err = o.Apply(Update{PaymentMethod: &PaymentMethod{Type: "cheque"}}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPaymentType)

	err = o.Apply(Update{PaymentStatus: ptr(PaymentStatus("bogus"))}, testNow)
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
	assert.False(t, errors.As(err, &perr))
	assert.Equal(t, PaymentRefunded, o.PaymentStatus)
}

func TestApply_SameStatusIsIdempotent(t *testing.T) {
	o, err := New("order-1", testDraft(), testNow)
	require.NoError(t, err)
	require.NoError(t, o.Apply(Update{Status: ptr(StatusPending), SpecialInstructions: ptr("extra napkins")}, testNow.Add(time.Minute)))
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "extra napkins", o.SpecialInstructions)
}

func TestSort(t *testing.T) {
	mk := func(id string, total int64, status Status, offset time.Duration) Order {
		return Order{ID: id, Total: decimal.NewFromInt(total), Status: status, CreatedAt: testNow.Add(offset)}
	}
	orders := []Order{
		mk("a", 30, StatusServed, 0),
		mk("b", 10, StatusPending, time.Minute),
		mk("c", 20, StatusCancelled, 2*time.Minute),
		mk("d", 40, StatusPreparing, 3*time.Minute),
	}
	ids := func(os []Order) string {
		s := ""
		for _, o := range os {
			s += o.ID
		}
		return s
	}

	tests := []struct {
		mode SortMode
		want string
	}{
		{SortNewest, "dcba"},
		{SortOldest, "abcd"},
		{SortAmountHigh, "dacb"},
		{SortAmountLow, "bcad"},
		{SortStatus, "bdac"},
		{"bogus", "abcd"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := append([]Order(nil), orders...)
			Sort(got, tt.mode)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter(t *testing.T) {
	o := Order{Status: StatusReady, Type: TypeTakeaway, CreatedAt: testNow}

	assert.True(t, Filter{}.Match(o))
	assert.True(t, Filter{Status: "all"}.Match(o))
	assert.True(t, Filter{Status: StatusReady, Type: TypeTakeaway}.Match(o))
	assert.False(t, Filter{Status: StatusPending}.Match(o))
	assert.False(t, Filter{Type: TypeDelivery}.Match(o))
	assert.False(t, Filter{Since: testNow.Add(time.Second)}.Match(o))
}
