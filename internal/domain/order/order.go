// Package order implements the order lifecycle from checkout to service.
package order

import (
	"fmt"
	"maps"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/pricing"
)

// Status is the kitchen progress of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further status change is possible.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// Type is how the order is fulfilled.
type Type string

const (
	TypeDineIn   Type = "dine-in"
	TypeTakeaway Type = "takeaway"
	TypeDelivery Type = "delivery"
)

// Valid reports whether t is a known order type.
func (t Type) Valid() bool {
	return t == TypeDineIn || t == TypeTakeaway || t == TypeDelivery
}

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentRefunded
}

// PaymentType is the tender used to settle an order.
type PaymentType string

const (
	PaymentCash    PaymentType = "cash"
	PaymentCard    PaymentType = "card"
	PaymentDigital PaymentType = "digital"
	PaymentQR      PaymentType = "qr"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCash, PaymentCard, PaymentDigital, PaymentQR:
		return true
	default:
		return false
	}
}

// PaymentMethod records how an order was or will be paid.
type PaymentMethod struct {
	Type    PaymentType    `json:"type"`
	Details map[string]any `json:"details,omitempty"`
}

func (m *PaymentMethod) clone() *PaymentMethod {
	if m == nil {
		return nil
	}
	return &PaymentMethod{Type: m.Type, Details: maps.Clone(m.Details)}
}

// Sentinel errors for order operations.
var (
	ErrCartEmpty            = errors.New("order must contain at least one item")
	ErrNotFound             = errors.New("order not found")
	ErrInvalidType          = errors.New("invalid order type")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentType   = errors.New("invalid payment type")
)

// TransitionError indicates a forbidden status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// PaymentTransitionError indicates a forbidden payment status change.
type PaymentTransitionError struct {
	From PaymentStatus
	To   PaymentStatus
}

func (e *PaymentTransitionError) Error() string {
	return fmt.Sprintf("cannot change payment status from %s to %s", e.From, e.To)
}

// Order is a placed order. Line items and totals are fixed at creation.
type Order struct {
	ID                  string             `json:"id"`
	TableID             string             `json:"tableId,omitempty"`
	Customer            *customer.Customer `json:"customer,omitempty"`
	Items               []cart.Line        `json:"items"`
	Status              Status             `json:"status"`
	Type                Type               `json:"type"`
	Subtotal            decimal.Decimal    `json:"subtotal"`
	ServiceCharge       decimal.Decimal    `json:"serviceCharge"`
	Tax                 decimal.Decimal    `json:"tax"`
	Discount            decimal.Decimal    `json:"discount"`
	Total               decimal.Decimal    `json:"total"`
	PaymentMethod       *PaymentMethod     `json:"paymentMethod,omitempty"`
	PaymentStatus       PaymentStatus      `json:"paymentStatus"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
	ServedAt            *time.Time         `json:"servedAt,omitempty"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
}

// Totals returns the amounts of the order.
func (o Order) Totals() pricing.Totals {
	return pricing.Totals{
		Subtotal: o.Subtotal,
		Service:  o.ServiceCharge,
		Tax:      o.Tax,
		Discount: o.Discount,
		Total:    o.Total,
	}
}

// ItemCount returns the total quantity across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	items := make([]cart.Line, len(o.Items))
	for i, l := range o.Items {
		items[i] = l.Clone()
	}
	o.Items = items
	if o.Customer != nil {
		c := o.Customer.Clone()
		o.Customer = &c
	}
	o.PaymentMethod = o.PaymentMethod.clone()
	if o.ServedAt != nil {
		t := *o.ServedAt
		o.ServedAt = &t
	}
	return o
}
