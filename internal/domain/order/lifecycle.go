package order

import (
	"slices"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/pricing"
)

// Draft is everything needed to place an order from the current cart.
type Draft struct {
	Lines               []cart.Line
	TableID             string
	Customer            *customer.Customer
	Type                Type
	Rates               pricing.Rates
	PaymentMethod       *PaymentMethod
	SpecialInstructions string
}

// New builds a pending order from a draft. Lines are deep-copied and
// totals are computed from them with the draft's rates.
func New(id string, d Draft, now time.Time) (Order, error) {
	if len(d.Lines) == 0 {
		return Order{}, ErrCartEmpty
	}
	if !d.Type.Valid() {
		return Order{}, errors.Wrapf(ErrInvalidType, "%q", d.Type)
	}
	totals, err := pricing.CartTotals(d.Lines, d.Rates)
	if err != nil {
		return Order{}, errors.Wrap(err, "compute totals")
	}

	o := Order{
		ID:                  id,
		TableID:             d.TableID,
		Customer:            d.Customer,
		Items:               d.Lines,
		Status:              StatusPending,
		Type:                d.Type,
		Subtotal:            totals.Subtotal,
		ServiceCharge:       totals.Service,
		Tax:                 totals.Tax,
		Discount:            totals.Discount,
		Total:               totals.Total,
		PaymentMethod:       d.PaymentMethod,
		PaymentStatus:       PaymentPending,
		CreatedAt:           now,
		UpdatedAt:           now,
		SpecialInstructions: d.SpecialInstructions,
	}
	return o.Clone(), nil
}

// statusRank orders statuses for sorting.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusServed:    3,
	StatusCancelled: 4,
}

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
}

var allowedPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

// CanTransition reports whether an order may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	return from == to || slices.Contains(allowedTransitions[from], to)
}

// NextStatuses returns the statuses reachable from s.
func NextStatuses(s Status) []Status {
	return slices.Clone(allowedTransitions[s])
}

// Update is a partial change to an order. Nil fields are left as they are.
type Update struct {
	Status              *Status        `json:"status,omitempty"`
	PaymentStatus       *PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod       *PaymentMethod `json:"paymentMethod,omitempty"`
	SpecialInstructions *string        `json:"specialInstructions,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.PaymentMethod == nil && u.SpecialInstructions == nil
}

func (u Update) validate(o Order) error {
	if s := u.Status; s != nil {
		if !s.Valid() {
			return errors.Wrapf(ErrInvalidStatus, "%q", *s)
		}
		if !CanTransition(o.Status, *s) {
			return &TransitionError{From: o.Status, To: *s}
		}
	}
	if ps := u.PaymentStatus; ps != nil {
		if !ps.Valid() {
			return errors.Wrapf(ErrInvalidPaymentStatus, "%q", *ps)
		}
		if *ps != o.PaymentStatus && !slices.Contains(allowedPaymentTransitions[o.PaymentStatus], *ps) {
			return &PaymentTransitionError{From: o.PaymentStatus, To: *ps}
		}
	}
	if m := u.PaymentMethod; m != nil && !m.Type.Valid() {
		return errors.Wrapf(ErrInvalidPaymentType, "%q", m.Type)
	}
	return nil
}

// Apply validates u against o and, if every change is allowed, applies it.
// On error o is left untouched.
func (o *Order) Apply(u Update, now time.Time) error {
	if err := u.validate(*o); err != nil {
		return err
	}
	if s := u.Status; s != nil && *s != o.Status {
		o.Status = *s
		if *s == StatusServed {
			served := now
			o.ServedAt = &served
		}
	}
	if ps := u.PaymentStatus; ps != nil {
		o.PaymentStatus = *ps
	}
	if u.PaymentMethod != nil {
		o.PaymentMethod = u.PaymentMethod.clone()
	}
	if u.SpecialInstructions != nil {
		o.SpecialInstructions = *u.SpecialInstructions
	}
	o.UpdatedAt = now
	return nil
}
