// Package pricing computes effective item prices and cart totals.
//
// Amounts keep full decimal precision; round with Totals.Rounded only when
// presenting them.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/menu"
)

// ErrInvalidDiscount is returned for a discount outside [0, 100].
var ErrInvalidDiscount = errors.New("discount must be between 0 and 100")

var hundred = decimal.NewFromInt(100)

// Rates are the fractional charges applied on top of the subtotal.
type Rates struct {
	Tax     decimal.Decimal
	Service decimal.Decimal
}

// Totals is the breakdown of a cart or order amount.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Service  decimal.Decimal `json:"serviceCharge"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the totals rounded to cents.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Service:  t.Service.Round(2),
		Tax:      t.Tax.Round(2),
		Discount: t.Discount.Round(2),
		Total:    t.Total.Round(2),
	}
}

// EffectivePrice returns the unit price after the item's percentage
// discount.
func EffectivePrice(item menu.Item) (decimal.Decimal, error) {
	if !item.Discount.Valid {
		return item.Price, nil
	}
	d := item.Discount.Decimal
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, errors.Wrapf(ErrInvalidDiscount, "item %q discount %s", item.ID, d)
	}
	return item.Price.Mul(decimal.NewFromInt(1).Sub(d.Div(hundred))), nil
}

// CartTotals computes subtotal, service charge, tax and total for lines.
// Tax applies to the subtotal plus service charge. Discount reports the
// amount already taken off the subtotal by item discounts.
func CartTotals(lines []cart.Line, rates Rates) (Totals, error) {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, l := range lines {
		price, err := EffectivePrice(l.MenuItem)
		if err != nil {
			return Totals{}, err
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(price.Mul(qty))
		discount = discount.Add(l.MenuItem.Price.Sub(price).Mul(qty))
	}

	service := subtotal.Mul(rates.Service)
	tax := subtotal.Add(service).Mul(rates.Tax)
	return Totals{
		Subtotal: subtotal,
		Service:  service,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(service).Add(tax),
	}, nil
}
