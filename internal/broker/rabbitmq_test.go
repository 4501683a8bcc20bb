package broker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) messages() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.sent...)
}

var stamp = time.Date(2024, 11, 18, 12, 0, 0, 0, time.UTC)

func event() pos.Event {
	return pos.Event{
		Type: pos.EventOrderCreated,
		Order: order.Order{
			ID:      "order-1",
			Status:  order.StatusPending,
			Type:    order.TypeDineIn,
			TableID: "t3",
		},
	}
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.created.dine-in", RoutingKey(event()))
}

func TestPublisher_Run(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "pos_orders", zap.NewNop(), WithClock(func() time.Time { return stamp }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Publish(event())
	require.Eventually(t, func() bool { return len(ch.messages()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	got := ch.messages()[0]
	assert.Equal(t, "pos_orders", got.exchange)
	assert.Equal(t, "order.created.dine-in", got.key)
	assert.Equal(t, "order-1", got.msg.CorrelationId)
	assert.Equal(t, "order.created", got.msg.Type)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.True(t, stamp.Equal(got.msg.Timestamp))
	assert.NotEmpty(t, got.msg.MessageId)

	var body struct {
		Event   string      `json:"event"`
		OrderID string      `json:"orderId"`
		TableID string      `json:"tableId"`
		Order   order.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "order.created", body.Event)
	assert.Equal(t, "order-1", body.OrderID)
	assert.Equal(t, "t3", body.TableID)
	assert.Equal(t, order.StatusPending, body.Order.Status)
}

func TestPublisher_FullQueueDrops(t *testing.T) {
	p := NewPublisher(&fakeChannel{}, "x", zap.NewNop(), WithBuffer(1))

	p.Publish(event())
	p.Publish(event())
	assert.Len(t, p.queue, 1)
}

func TestPublisher_FailureKeepsRunning(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := NewPublisher(ch, "x", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Publish(event())
	p.Publish(event())
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
