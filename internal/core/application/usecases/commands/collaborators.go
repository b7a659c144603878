package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Collaborators groups the outbound services the orchestrating handlers call.
// Catalog, Payments and Geocoder are required by the handlers that use them.
// Notifier, Events and Idempotency are optional: a nil value disables that
// side effect.
type Collaborators struct {
	Catalog     ports.RestaurantCatalog
	Payments    ports.PaymentGateway
	Geocoder    ports.Geocoder
	Notifier    ports.Notifier
	Events      ports.EventPublisher
	Idempotency ports.IdempotencyStore
	Logger      *slog.Logger
}

func (c Collaborators) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// notify sends n and only logs a failure.
func (c Collaborators) notify(ctx context.Context, o *order.Order, n ports.Notification) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Notify(ctx, n); err != nil {
		c.logger().WarnContext(ctx, "notification failed",
			"order_id", o.ID().String(),
			"channel", n.Channel,
			"error", err,
		)
	}
}

// notifyCustomer addresses the customer by email when one was given.
func (c Collaborators) notifyCustomer(ctx context.Context, o *order.Order, message string) {
	recipient := o.Delivery().CustomerEmail
	if recipient == "" {
		recipient = o.CustomerID().String()
	}
	c.notify(ctx, o, ports.Notification{
		Channel:   ports.AudienceCustomer,
		Recipient: recipient,
		Message:   message,
	})
}

// notifyRestaurants tells every restaurant of the order.
func (c Collaborators) notifyRestaurants(ctx context.Context, o *order.Order, message string) {
	for _, ro := range o.RestaurantOrders() {
		c.notify(ctx, o, ports.Notification{
			Channel:   ports.AudienceRestaurant,
			Recipient: ro.RestaurantID().String(),
			Message:   message,
		})
	}
}

// publishStatusChanged emits an event for a committed status change and only
// logs a failure.
func (c Collaborators) publishStatusChanged(ctx context.Context, o *order.Order, from order.Status, actor order.Actor) {
	if c.Events == nil {
		return
	}

	event := ports.OrderStatusChanged{
		OrderID:       o.ID(),
		From:          from.String(),
		To:            o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		DriverID:      o.DriverID(),
		Actor:         actor.String(),
		OccurredAt:    time.Now().UTC(),
	}
	if err := c.Events.PublishOrderStatusChanged(ctx, event); err != nil {
		c.logger().WarnContext(ctx, "publishing status change failed",
			"order_id", o.ID().String(),
			"to", event.To,
			"error", err,
		)
	}
}
