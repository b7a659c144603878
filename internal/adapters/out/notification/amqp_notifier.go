package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the fanout exchange notification consumers bind their queues to.
const Exchange = "notifications"

// AMQPNotifier publishes notifications as persistent JSON messages.
type AMQPNotifier struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

var _ ports.Notifier = (*AMQPNotifier)(nil)

// DialAMQPNotifier connects to url and declares the durable fanout exchange.
func DialAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errs.NewUpstreamUnavailableErrorWithCause("rabbitmq", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.NewUpstreamUnavailableErrorWithCause("rabbitmq", err)
	}
	if err = ch.ExchangeDeclare(Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.NewUpstreamUnavailableErrorWithCause("rabbitmq", err)
	}

	return &AMQPNotifier{conn: conn, ch: ch}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	if err := validate(notification); err != nil {
		return err
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.ch.PublishWithContext(ctx, Exchange, notification.Channel, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return errs.NewUpstreamUnavailableErrorWithCause("rabbitmq", err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
