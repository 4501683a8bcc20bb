// Package payment simulates tender processing at the terminal. No money
// moves; each method waits for a fixed delay and produces the receipt
// details a real processor would return.
package payment

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/order"
)

// Sentinel errors returned by Process.
var (
	ErrInsufficientAmount = errors.New("insufficient amount received")
	ErrMissingDetails     = errors.New("missing payment details")
	ErrDeclined           = errors.New("card declined")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
)

// Card holds the card fields typed at the terminal.
type Card struct {
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holderName"`
}

// Request is a payment attempt for an order total.
type Request struct {
	Type           order.PaymentType `json:"type"`
	AmountReceived decimal.Decimal   `json:"amountReceived"`
	Card           *Card             `json:"card,omitempty"`
	Provider       string            `json:"provider,omitempty"`
}

// DefaultDelays are the simulated processing times per method.
func DefaultDelays() map[order.PaymentType]time.Duration {
	return map[order.PaymentType]time.Duration{
		order.PaymentCash:    time.Second,
		order.PaymentCard:    2 * time.Second,
		order.PaymentDigital: 1500 * time.Millisecond,
		order.PaymentQR:      3 * time.Second,
	}
}

// DefaultDeclineRate is the fraction of card payments that are declined.
const DefaultDeclineRate = 0.1

// Processor runs simulated payments.
type Processor struct {
	delays      map[order.PaymentType]time.Duration
	declineRate float64
	random      func() float64
	now         func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithDelayScale multiplies every processing delay. Zero disables delays.
func WithDelayScale(scale float64) Option {
	return func(p *Processor) {
		for k, d := range p.delays {
			p.delays[k] = time.Duration(float64(d) * scale)
		}
	}
}

// WithDeclineRate sets the fraction of declined card payments.
func WithDeclineRate(rate float64) Option {
	return func(p *Processor) { p.declineRate = rate }
}

// WithRandom sets the source used to decide card declines. It must return
// values in [0, 1).
func WithRandom(random func() float64) Option {
	return func(p *Processor) { p.random = random }
}

// WithClock sets the clock used for transaction references.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a processor with the default delays and decline
// rate.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		delays:      DefaultDelays(),
		declineRate: DefaultDeclineRate,
		random:      rand.Float64,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process charges amount using req. It blocks for the method's delay and
// returns early with the context error if ctx is cancelled first.
func (p *Processor) Process(ctx context.Context, req Request, amount decimal.Decimal) (order.PaymentMethod, error) {
	due := amount.Round(2)

	switch req.Type {
	case order.PaymentCash:
		if req.AmountReceived.LessThan(due) {
			return order.PaymentMethod{}, errors.Wrapf(ErrInsufficientAmount, "received %s, due %s",
				req.AmountReceived.StringFixed(2), due.StringFixed(2))
		}
	case order.PaymentCard:
		if c := req.Card; c == nil || c.Number == "" || c.Expiry == "" || c.CVV == "" || c.HolderName == "" {
			return order.PaymentMethod{}, errors.Wrap(ErrMissingDetails, "card number, expiry, cvv and holder name are required")
		}
	case order.PaymentDigital:
		if strings.TrimSpace(req.Provider) == "" {
			return order.PaymentMethod{}, errors.Wrap(ErrMissingDetails, "digital wallet provider is required")
		}
	case order.PaymentQR:
	default:
		return order.PaymentMethod{}, errors.Wrapf(ErrUnsupportedMethod, "%q", req.Type)
	}

	if err := wait(ctx, p.delays[req.Type]); err != nil {
		return order.PaymentMethod{}, errors.Wrap(err, "payment cancelled")
	}

	stamp := p.now().UnixMilli()
	m := order.PaymentMethod{Type: req.Type}
	switch req.Type {
	case order.PaymentCash:
		change := decimal.Max(decimal.Zero, req.AmountReceived.Sub(due))
		m.Details = map[string]any{
			"amountReceived": req.AmountReceived.StringFixed(2),
			"change":         change.StringFixed(2),
		}
	case order.PaymentCard:
		if p.random() < p.declineRate {
			return order.PaymentMethod{}, ErrDeclined
		}
		number := req.Card.Number
		m.Details = map[string]any{
			"last4":          number[max(0, len(number)-4):],
			"cardholderName": req.Card.HolderName,
			"transactionId":  reference("TXN", stamp),
			"authCode":       code(6),
		}
	case order.PaymentDigital:
		m.Details = map[string]any{
			"provider":      req.Provider,
			"transactionId": reference("DIG", stamp),
			"reference":     code(10),
		}
	case order.PaymentQR:
		m.Details = map[string]any{
			"qrCode":        reference("QR", stamp),
			"transactionId": reference("QR", stamp),
			"amount":        due.StringFixed(2),
		}
	}
	return m, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func reference(prefix string, stamp int64) string {
	return prefix + "-" + strconv.FormatInt(stamp, 10)
}

func code(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return s[:n]
}
