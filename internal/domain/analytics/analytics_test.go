package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/order"
)

var now = time.Date(2024, 11, 18, 15, 0, 0, 0, time.UTC)

func line(id, category, price string, qty int) cart.Line {
	return cart.Line{
		ID:       "cart-" + id,
		MenuItem: menu.Item{ID: id, Name: "item " + id, Category: category, Price: decimal.RequireFromString(price)},
		Quantity: qty,
	}
}

func paidOrder(id string, at time.Time, total string, lines ...cart.Line) order.Order {
	return order.Order{
		ID:            id,
		Items:         lines,
		Status:        order.StatusServed,
		PaymentStatus: order.PaymentPaid,
		Total:         decimal.RequireFromString(total),
		CreatedAt:     at,
	}
}

func fixtures() []order.Order {
	cancelled := paidOrder("o-cancelled", now.Add(-time.Hour), "100", line("9", "mains", "100", 1))
	cancelled.Status = order.StatusCancelled

	pending := paidOrder("o-pending", now.Add(-30*time.Minute), "50", line("9", "mains", "50", 1))
	pending.PaymentStatus = order.PaymentPending
	pending.Status = order.StatusPending

	return []order.Order{
		paidOrder("o-1", now.Add(-3*time.Hour), "20", line("1", "burgers", "10", 2)),
		paidOrder("o-2", now.Add(-3*time.Hour+10*time.Minute), "30", line("1", "burgers", "10", 1), line("2", "pizzas", "20", 1)),
		paidOrder("o-3", now.Add(-time.Hour), "10", line("3", "desserts", "10", 1)),
		cancelled,
		pending,
		paidOrder("o-yesterday", now.Add(-20*time.Hour), "40", line("2", "pizzas", "20", 2)),
		paidOrder("o-last-week", now.AddDate(0, 0, -10), "25", line("1", "burgers", "25", 1)),
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Today, p)

	_, err = ParsePeriod("year")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestCompute_Today(t *testing.T) {
	r := Compute(fixtures(), Today, now)

	assert.Equal(t, 3, r.Sales.Orders)
	assert.Equal(t, "60.00", r.Sales.Total.StringFixed(2))
	assert.Equal(t, "20.00", r.Sales.AvgOrderValue.StringFixed(2))
	// Yesterday sold 40.
	assert.Equal(t, "50.0", r.Sales.Growth.StringFixed(1))

	assert.Equal(t, 3, r.Orders[order.StatusServed])
	assert.Equal(t, 1, r.Orders[order.StatusCancelled])
	assert.Equal(t, 1, r.Orders[order.StatusPending])
	assert.Equal(t, 0, r.Orders[order.StatusReady])

	require.Len(t, r.TopItems, 3)
	assert.Equal(t, "1", r.TopItems[0].ID)
	assert.Equal(t, 3, r.TopItems[0].Orders)
	assert.Equal(t, "30.00", r.TopItems[0].Revenue.StringFixed(2))

	require.Len(t, r.HourlyBreakdown, 2)
	assert.Equal(t, 12, r.HourlyBreakdown[0].Hour)
	assert.Equal(t, 2, r.HourlyBreakdown[0].Orders)
	assert.Equal(t, "50.00", r.HourlyBreakdown[0].Sales.StringFixed(2))
	assert.Equal(t, 14, r.HourlyBreakdown[1].Hour)
	assert.Nil(t, r.DailyBreakdown)
}

func TestCompute_Week(t *testing.T) {
	r := Compute(fixtures(), Week, now)

	assert.Equal(t, 4, r.Sales.Orders)
	assert.Equal(t, "100.00", r.Sales.Total.StringFixed(2))
	require.Len(t, r.DailyBreakdown, 7)
	last := r.DailyBreakdown[6]
	assert.Equal(t, "Mon", last.Day)
	assert.Equal(t, "2024-11-18", last.Date)
	assert.Equal(t, 3, last.Orders)
	assert.Equal(t, 1, r.DailyBreakdown[5].Orders)
}

func TestCompute_MonthCategories(t *testing.T) {
	r := Compute(fixtures(), Month, now)

	require.NotEmpty(t, r.CategoryBreakdown)
	var total decimal.Decimal
	for _, c := range r.CategoryBreakdown {
		total = total.Add(c.Percentage)
	}
	assert.InDelta(t, 100, total.InexactFloat64(), 0.2)
	assert.Equal(t, "pizzas", r.CategoryBreakdown[0].Category)
	assert.Equal(t, "60.00", r.CategoryBreakdown[0].Sales.StringFixed(2))
}

func TestCompute_Empty(t *testing.T) {
	r := Compute(nil, Today, now)
	assert.True(t, r.Sales.Total.IsZero())
	assert.True(t, r.Sales.AvgOrderValue.IsZero())
	assert.NotNil(t, r.TopItems)
}

func TestReport_Metric(t *testing.T) {
	r := Compute(fixtures(), Today, now)

	v, ok := r.Metric("sales")
	require.True(t, ok)
	assert.IsType(t, Sales{}, v)

	_, ok = r.Metric("customers")
	assert.False(t, ok)
}

func TestTrack(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	_, err := Track(ctx, Event{}, now)
	assert.ErrorIs(t, err, ErrEventNameRequired)

	ev, err := Track(ctx, Event{Name: "add_to_cart", Data: map[string]any{"item": "1"}}, now)
	require.NoError(t, err)
	assert.Equal(t, now, ev.Timestamp)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "add_to_cart", logs.All()[0].ContextMap()["event"])
}
