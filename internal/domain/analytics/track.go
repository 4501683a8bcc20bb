package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrEventNameRequired is returned when a tracked event has no name.
var ErrEventNameRequired = errors.New("event name is required")

// Event is a client-side interaction reported by the terminal UI.
type Event struct {
	Name      string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	UserAgent string         `json:"userAgent,omitempty"`
	IP        string         `json:"ip,omitempty"`
}

// Track records ev in the request log. A zero timestamp is set to now.
func Track(ctx context.Context, ev Event, now time.Time) (Event, error) {
	if strings.TrimSpace(ev.Name) == "" {
		return Event{}, ErrEventNameRequired
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	zctx.From(ctx).Info("Tracked event",
		zap.String("event", ev.Name),
		zap.Any("data", ev.Data),
		zap.Time("timestamp", ev.Timestamp),
		zap.String("user_agent", ev.UserAgent),
		zap.String("ip", ev.IP),
	)
	return ev, nil
}
