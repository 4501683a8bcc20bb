// Package broker forwards order events to a RabbitMQ topic exchange so
// kitchen displays and other services can follow the terminal.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
)

// Channel is the part of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Conn is an open broker connection with the order exchange declared.
type Conn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %q", exchange)
	}
	return &Conn{conn: conn, ch: ch}, nil
}

// Channel returns the publishing channel.
func (c *Conn) Channel() Channel { return c.ch }

// Ping reports whether the connection is still open.
func (c *Conn) Ping(context.Context) error {
	if c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and the connection.
func (c *Conn) Close() {
	_ = c.ch.Close()
	_ = c.conn.Close()
}

var _ pos.Publisher = (*Publisher)(nil)

// Publisher queues order events and publishes them from Run.
type Publisher struct {
	ch       Channel
	exchange string
	timeout  time.Duration
	queue    chan pos.Event
	lg       *zap.Logger
	now      func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBuffer sets how many events may wait for Run.
func WithBuffer(n int) Option {
	return func(p *Publisher) { p.queue = make(chan pos.Event, n) }
}

// WithTimeout bounds each publish call.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) { p.timeout = d }
}

// WithClock sets the clock for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// NewPublisher creates a publisher to exchange over ch.
func NewPublisher(ch Channel, exchange string, lg *zap.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		ch:       ch,
		exchange: exchange,
		timeout:  5 * time.Second,
		queue:    make(chan pos.Event, 256),
		lg:       lg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish enqueues ev. A full queue drops the event.
func (p *Publisher) Publish(ev pos.Event) {
	select {
	case p.queue <- ev:
	default:
		p.lg.Warn("Broker queue full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("order_id", ev.Order.ID),
		)
	}
}

// Run publishes queued events until ctx is done. Publish failures are
// logged and the event is dropped.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-p.queue:
			if err := p.send(ctx, ev); err != nil {
				p.lg.Error("Publish order event",
					zap.Error(err),
					zap.String("type", string(ev.Type)),
					zap.String("order_id", ev.Order.ID),
				)
			}
		}
	}
}

func (p *Publisher) send(ctx context.Context, ev pos.Event) error {
	body, err := encodeMessage(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev), false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		Body:          body,
		MessageId:     uuid.NewString(),
		CorrelationId: ev.Order.ID,
		Timestamp:     p.now().UTC(),
		Type:          string(ev.Type),
		Headers: amqp.Table{
			"x-source": "posify",
		},
	})
}

// RoutingKey is "<event>.<order type>", e.g. "order.created.dine-in".
func RoutingKey(ev pos.Event) string {
	return string(ev.Type) + "." + string(ev.Order.Type)
}

type message struct {
	Event     pos.EventType `json:"event"`
	OrderID   string        `json:"orderId"`
	Status    order.Status  `json:"status"`
	OrderType order.Type    `json:"orderType"`
	TableID   string        `json:"tableId,omitempty"`
	Order     order.Order   `json:"order"`
}

func encodeMessage(ev pos.Event) ([]byte, error) {
	body, err := json.Marshal(message{
		Event:     ev.Type,
		OrderID:   ev.Order.ID,
		Status:    ev.Order.Status,
		OrderType: ev.Order.Type,
		TableID:   ev.Order.TableID,
		Order:     ev.Order,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal order event")
	}
	return body, nil
}
