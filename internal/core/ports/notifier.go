package ports

import (
	"context"
)

// Audience of a notification.
const (
	AudienceCustomer   = "customer"
	AudienceRestaurant = "restaurant"
	AudienceDriver     = "driver"
)

// Notification is a single message to one party of an order.
type Notification struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Notifier sends notifications. Delivery is best-effort: callers log a
// failure and carry on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
