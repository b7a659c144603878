// Package notification delivers customer, restaurant and driver notifications
// either to the notification service over HTTP or to a RabbitMQ fanout
// exchange. Both transports carry the same JSON body.
package notification

import (
	"context"
	"net/http"
	"time"

	"fulfillment/internal/adapters/out/httpclient"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const notificationsPath = "/notifications"

// HTTPNotifier posts notifications to the notification service.
type HTTPNotifier struct {
	http *httpclient.Client
}

var _ ports.Notifier = (*HTTPNotifier)(nil)

func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{http: httpclient.New("notification", baseURL, timeout)}
}

func (n *HTTPNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	if err := validate(notification); err != nil {
		return err
	}

	resp, err := n.http.Do(ctx, http.MethodPost, notificationsPath, notification, nil, nil)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return n.http.Unexpected(http.MethodPost, notificationsPath, resp)
	}
	return nil
}

func validate(n ports.Notification) error {
	switch {
	case n.Channel == "":
		return errs.NewValueIsRequiredError("channel")
	case n.Recipient == "":
		return errs.NewValueIsRequiredError("recipient")
	case n.Message == "":
		return errs.NewValueIsRequiredError("message")
	}
	return nil
}
