// Package pos owns the state of a single point-of-sale terminal: the cart,
// placed orders, settings and the current table, customer and order type.
//
// Every mutation runs under one lock and writes the affected snapshot to
// the Repository before the lock is released, so snapshots are stored in
// mutation order. Persistence failures are logged and never undo the
// in-memory change.
package pos

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/table"
)

// EventType names a change published by the store.
type EventType string

const (
	EventOrderCreated EventType = "order.created"
	EventOrderUpdated EventType = "order.updated"
)

// Event is an order change.
type Event struct {
	Type  EventType
	Order order.Order
}

// Publisher receives order events after the change is committed. Publish
// must not block.
type Publisher interface {
	Publish(ev Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Publishers delivers every event to each publisher in turn.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(ev Event) {
	for _, p := range ps {
		p.Publish(ev)
	}
}

// Selection is what the operator has currently picked at the terminal.
type Selection struct {
	Table     *table.Table       `json:"table"`
	Customer  *customer.Customer `json:"customer"`
	OrderType order.Type         `json:"orderType"`
	Category  string             `json:"category"`
}

func (s Selection) clone() Selection {
	if s.Table != nil {
		t := s.Table.Clone()
		s.Table = &t
	}
	if s.Customer != nil {
		c := s.Customer.Clone()
		s.Customer = &c
	}
	return s
}

// Store is the terminal state. Use Open to create one.
type Store struct {
	mu        sync.Mutex
	cart      cart.Cart
	orders    []order.Order
	settings  Settings
	selection Selection
	// revision changes whenever the cart or the pricing settings change.
	revision uint64

	repo    Repository
	ids     IDGenerator
	now     func() time.Time
	lg      *zap.Logger
	events  Publisher
	meter   metric.MeterProvider
	created metric.Int64Counter
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator for cart line and order IDs.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithClock sets the time source for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for persistence problems.
func WithLogger(lg *zap.Logger) Option {
	return func(s *Store) { s.lg = lg }
}

// WithPublisher sets the receiver of order events.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.events = p }
}

// WithMeterProvider sets the meter provider for order metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Store) { s.meter = mp }
}

// Open creates a store and restores its state from repo. Missing or
// undecodable snapshots fall back to defaults.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		settings: DefaultSettings(),
		selection: Selection{
			OrderType: order.TypeDineIn,
			Category:  "all",
		},
		repo:   repo,
		ids:    UUIDGenerator{},
		now:    time.Now,
		lg:     zap.NewNop(),
		events: nopPublisher{},
		meter:  noop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	created, err := s.meter.Meter("github.com/xenking/posify/internal/domain/pos").Int64Counter(
		"pos.orders.created",
		metric.WithDescription("Number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	s.created = created

	s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) {
	var lines []cart.Line
	if s.restore(ctx, KeyCart, &lines) {
		s.cart = cart.New(lines)
	}

	var orders []order.Order
	if s.restore(ctx, KeyOrders, &orders) {
		s.orders = orders
	}

	settings := DefaultSettings()
	if s.restore(ctx, KeySettings, &settings) {
		if err := settings.Validate(); err != nil {
			s.lg.Warn("Stored settings are invalid, using defaults", zap.Error(err))
		} else {
			s.settings = settings
		}
	}

	var tbl *table.Table
	if s.restore(ctx, KeyCurrentTable, &tbl) {
		s.selection.Table = tbl
	}

	var cust *customer.Customer
	if s.restore(ctx, KeyCurrentCustomer, &cust) {
		s.selection.Customer = cust
	}

	var orderType order.Type
	if s.restore(ctx, KeyOrderType, &orderType) {
		if orderType.Valid() {
			s.selection.OrderType = orderType
		} else {
			s.lg.Warn("Stored order type is invalid, using default", zap.String("order_type", string(orderType)))
		}
	}

	s.lg.Info("State restored",
		zap.Int("cart_lines", s.cart.Len()),
		zap.Int("orders", len(s.orders)),
	)
}

// restore decodes the snapshot under key into v. v keeps its value when
// the snapshot is missing or cannot be decoded.
func (s *Store) restore(ctx context.Context, key Key, v any) bool {
	data, err := s.repo.Load(ctx, key)
	if errors.Is(err, ErrNoSnapshot) {
		return false
	}
	if err != nil {
		s.lg.Warn("Load snapshot failed, using defaults", zap.String("key", string(key)), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.lg.Warn("Decode snapshot failed, using defaults", zap.String("key", string(key)), zap.Error(err))
		return false
	}
	return true
}

// persist writes v under key. It must be called with s.mu held.
func (s *Store) persist(ctx context.Context, key Key, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.lg.Error("Encode snapshot failed", zap.String("key", string(key)), zap.Error(err))
		return
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), key, data); err != nil {
		s.lg.Error("Persist snapshot failed", zap.String("key", string(key)), zap.Error(err))
	}
}

func (s *Store) persistCart(ctx context.Context) {
	s.persist(ctx, KeyCart, s.cart.Lines())
}

func (s *Store) persistOrders(ctx context.Context) {
	s.persist(ctx, KeyOrders, s.orders)
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges u into the settings. An update that would leave the
// settings invalid is rejected.
func (s *Store) UpdateSettings(ctx context.Context, u SettingsUpdate) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := u.apply(s.settings)
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	if !next.TaxRate.Equal(s.settings.TaxRate) || !next.ServiceCharge.Equal(s.settings.ServiceCharge) {
		s.revision++
	}
	s.settings = next
	s.persist(ctx, KeySettings, s.settings)
	return s.settings, nil
}

// Selection returns the current table, customer, order type and category.
func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.clone()
}

// SetTable selects the table for the next order. Nil clears it.
func (s *Store) SetTable(ctx context.Context, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != nil {
		c := t.Clone()
		t = &c
	}
	s.selection.Table = t
	s.persist(ctx, KeyCurrentTable, t)
}

// SetCustomer selects the customer for the next order. Nil clears it.
func (s *Store) SetCustomer(ctx context.Context, c *customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c != nil {
		v := c.Clone()
		c = &v
	}
	s.selection.Customer = c
	s.persist(ctx, KeyCurrentCustomer, c)
}

// SetOrderType selects how the next order is fulfilled.
func (s *Store) SetOrderType(ctx context.Context, t order.Type) error {
	if !t.Valid() {
		return errors.Wrapf(order.ErrInvalidType, "%q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.OrderType = t
	s.persist(ctx, KeyOrderType, t)
	return nil
}

// SetCategory selects the menu category being browsed. It is not
// persisted.
func (s *Store) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" {
		category = "all"
	}
	s.selection.Category = category
}
