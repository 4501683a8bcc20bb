package pos

import (
	"context"
	"slices"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/payment"
	"github.com/xenking/posify/internal/domain/pricing"
)

// ErrCartChanged is returned by Checkout when the cart or the rates changed
// while the payment was being processed.
var ErrCartChanged = errors.New("cart changed during checkout")

// PaymentProcessor charges an amount for a payment request.
type PaymentProcessor interface {
	Process(ctx context.Context, req payment.Request, amount decimal.Decimal) (order.PaymentMethod, error)
}

// createLocked places an order from the cart and clears the cart. It must
// be called with s.mu held and does not persist.
func (s *Store) createLocked(method *order.PaymentMethod) (order.Order, error) {
	if s.cart.Len() == 0 {
		return order.Order{}, order.ErrCartEmpty
	}

	sel := s.selection.clone()
	d := order.Draft{
		Lines:         s.cart.Lines(),
		Customer:      sel.Customer,
		Type:          sel.OrderType,
		Rates:         s.settings.Rates(),
		PaymentMethod: method,
	}
	if sel.Table != nil {
		d.TableID = sel.Table.ID
	}

	now := s.now()
	o, err := order.New(s.ids.NewID("order-"+strconv.FormatInt(now.UnixMilli(), 10)), d, now)
	if err != nil {
		return order.Order{}, err
	}
	s.orders = append(s.orders, o)
	s.cart.Clear()
	s.revision++
	return o, nil
}

func (s *Store) recordCreated(ctx context.Context, o order.Order) {
	s.created.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.type", string(o.Type)),
	))
	s.events.Publish(Event{Type: EventOrderCreated, Order: o.Clone()})
}

// CreateOrder places the cart as a pending order using the current
// selection and settings, then clears the cart. An empty cart returns
// order.ErrCartEmpty and changes nothing.
func (s *Store) CreateOrder(ctx context.Context, method *order.PaymentMethod) (order.Order, error) {
	s.mu.Lock()
	o, err := s.createLocked(method)
	if err != nil {
		s.mu.Unlock()
		return order.Order{}, err
	}
	s.persistOrders(ctx)
	s.persistCart(ctx)
	s.mu.Unlock()

	s.recordCreated(ctx, o)
	return o.Clone(), nil
}

// Checkout takes payment for the cart and places the order as paid.
// Payment failure or cancellation leaves the cart and orders untouched.
func (s *Store) Checkout(ctx context.Context, proc PaymentProcessor, req payment.Request) (order.Order, error) {
	s.mu.Lock()
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return order.Order{}, order.ErrCartEmpty
	}
	totals, err := pricing.CartTotals(s.cart.Lines(), s.settings.Rates())
	revision := s.revision
	s.mu.Unlock()
	if err != nil {
		return order.Order{}, errors.Wrap(err, "compute totals")
	}

	method, err := proc.Process(ctx, req, totals.Total)
	if err != nil {
		return order.Order{}, err
	}

	s.mu.Lock()
	if s.revision != revision {
		s.mu.Unlock()
		return order.Order{}, ErrCartChanged
	}
	o, err := s.createLocked(&method)
	if err != nil {
		s.mu.Unlock()
		return order.Order{}, err
	}
	paid := order.PaymentPaid
	if err := s.orders[len(s.orders)-1].Apply(order.Update{PaymentStatus: &paid}, s.now()); err != nil {
		// A freshly created order is pending, so this cannot fail.
		s.mu.Unlock()
		return order.Order{}, errors.Wrap(err, "mark paid")
	}
	o = s.orders[len(s.orders)-1].Clone()
	s.persistOrders(ctx)
	s.persistCart(ctx)
	s.mu.Unlock()

	s.recordCreated(ctx, o)
	return o, nil
}

// UpdateOrder applies a partial update to an order. Forbidden status or
// payment transitions are rejected without changing the order.
func (s *Store) UpdateOrder(ctx context.Context, id string, u order.Update) (order.Order, error) {
	s.mu.Lock()
	i := slices.IndexFunc(s.orders, func(o order.Order) bool { return o.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return order.Order{}, errors.Wrapf(order.ErrNotFound, "id %q", id)
	}
	if err := s.orders[i].Apply(u, s.now()); err != nil {
		s.mu.Unlock()
		return order.Order{}, err
	}
	o := s.orders[i].Clone()
	s.persistOrders(ctx)
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventOrderUpdated, Order: o.Clone()})
	return o, nil
}

// Order returns the order with the given ID.
func (s *Store) Order(id string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return order.Order{}, errors.Wrapf(order.ErrNotFound, "id %q", id)
}

// Orders returns copies of the orders matching f, sorted by mode.
func (s *Store) Orders(f order.Filter, mode order.SortMode) []order.Order {
	s.mu.Lock()
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if f.Match(o) {
			out = append(out, o.Clone())
		}
	}
	s.mu.Unlock()

	order.Sort(out, mode)
	return out
}
