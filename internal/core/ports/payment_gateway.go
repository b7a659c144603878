package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// PaymentRequest asks the gateway to capture an order's total.
// The order id doubles as the idempotency key of the capture.
type PaymentRequest struct {
	OrderID  kernel.UUID
	Amount   kernel.Money
	Currency string
	Method   order.PaymentMethod
}

// PaymentResult is a definite answer from the gateway.
type PaymentResult struct {
	Succeeded     bool
	TransactionID string
	Reason        string
}

// PaymentGateway captures payments.
//
// A declined payment is a PaymentResult with Succeeded false and a nil error.
// Any error means the outcome is unknown (*errs.UpstreamUnavailableError for
// timeouts and transport failures), and callers must not assume either result.
type PaymentGateway interface {
	Capture(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}
