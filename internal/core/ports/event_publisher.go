package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// OrderStatusChanged is emitted after an order status change is committed.
type OrderStatusChanged struct {
	OrderID       kernel.UUID
	From          string
	To            string
	PaymentStatus string
	DriverID      *kernel.UUID
	Actor         string
	OccurredAt    time.Time
}

// EventPublisher publishes domain events to downstream consumers.
// Publishing is best-effort and happens outside the database transaction.
type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusChanged) error
}
