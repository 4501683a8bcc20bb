// Package ws streams order events to kitchen displays over websockets.
package ws

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/domain/pos"
)

// Hub fans out order events to every connected client. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	lg *zap.Logger

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

var _ pos.Publisher = (*Hub)(nil)

// NewHub creates a hub. Call Run to start it.
func NewHub(lg *zap.Logger) *Hub {
	return &Hub{
		lg:         lg,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.lg.Debug("Client connected", zap.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.lg.Warn("Dropping slow client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Publish queues an order event for broadcast. It never blocks: when the
// queue is full the event is dropped and logged.
func (h *Hub) Publish(ev pos.Event) {
	msg, err := EncodeEvent(ev)
	if err != nil {
		h.lg.Error("Encode order event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.lg.Warn("Broadcast queue full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("order_id", ev.Order.ID),
		)
	}
}

// EncodeEvent renders ev as a {"type":...,"order":{...}} frame.
func EncodeEvent(ev pos.Event) ([]byte, error) {
	body, err := json.Marshal(ev.Order)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order")
	}
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str(string(ev.Type))
	e.FieldStart("order")
	e.Raw(body)
	e.ObjEnd()
	return e.Bytes(), nil
}
