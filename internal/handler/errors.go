package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/collection"
	"github.com/xenking/posify/internal/domain/analytics"
	"github.com/xenking/posify/internal/domain/cart"
	"github.com/xenking/posify/internal/domain/customer"
	"github.com/xenking/posify/internal/domain/inventory"
	"github.com/xenking/posify/internal/domain/menu"
	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/payment"
	"github.com/xenking/posify/internal/domain/pos"
	"github.com/xenking/posify/internal/domain/pricing"
	"github.com/xenking/posify/internal/domain/table"
)

// requestError is a failure detected by the handler itself.
type requestError struct {
	Status int
	Msg    string
}

func (e *requestError) Error() string { return e.Msg }

func badRequest(format string, args ...any) error {
	return &requestError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// UnavailableError is returned when an unavailable menu item is added to
// the cart or ordered.
type UnavailableError struct {
	ItemID string
	Name   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("menu item %q is not available", e.Name)
}

// statusOf maps an error to its HTTP status code.
func statusOf(err error) int {
	var (
		reqErr        *requestError
		unavailable   *UnavailableError
		menuInvalid   *menu.ValidationError
		stockInvalid  *inventory.ValidationError
		dupCustomer   *customer.DuplicateError
		dupTable      *table.DuplicateNumberError
		transition    *order.TransitionError
		payTransition *order.PaymentTransitionError
	)
	switch {
	case errors.As(err, &reqErr):
		return reqErr.Status
	case errors.As(err, &unavailable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &menuInvalid),
		errors.As(err, &stockInvalid),
		errors.Is(err, customer.ErrNameRequired),
		errors.Is(err, table.ErrInvalidStatus),
		errors.Is(err, table.ErrInvalidCapacity),
		errors.Is(err, table.ErrInvalidNumber),
		errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrInvalidType),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPaymentStatus),
		errors.Is(err, order.ErrInvalidPaymentType),
		errors.Is(err, pricing.ErrInvalidDiscount),
		errors.Is(err, pos.ErrInvalidSettings),
		errors.Is(err, analytics.ErrInvalidPeriod),
		errors.Is(err, analytics.ErrEventNameRequired),
		errors.Is(err, payment.ErrMissingDetails),
		errors.Is(err, payment.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrDeclined),
		errors.Is(err, payment.ErrInsufficientAmount):
		return http.StatusPaymentRequired
	case errors.Is(err, collection.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrExists),
		errors.As(err, &dupCustomer),
		errors.As(err, &dupTable),
		errors.Is(err, table.ErrInUse),
		errors.As(err, &transition),
		errors.As(err, &payTransition),
		errors.Is(err, pos.ErrCartChanged):
		return http.StatusConflict
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a failure envelope. Unexpected errors are logged and
// hidden from the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, r, status, envelope{Error: msg})
}
