// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// orderStatusChangedMessage is the wire format of ports.OrderStatusChanged.
type orderStatusChangedMessage struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	PaymentStatus string    `json:"paymentStatus"`
	DriverID      *string   `json:"driverId,omitempty"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurredAt"`
}

const orderStatusChangedType = "order.status_changed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements ports.EventPublisher. Messages are keyed by order
// id, so consumers see the changes of one order in commit order.
type KafkaPublisher struct {
	writer messageWriter
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher writes to topic on brokers and waits for all in-sync replicas.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	})
}

// NewKafkaPublisherWithWriter takes any writer with the kafka.Writer methods.
func NewKafkaPublisherWithWriter(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, event ports.OrderStatusChanged) error {
	msg := orderStatusChangedMessage{
		Type:          orderStatusChangedType,
		OrderID:       event.OrderID.String(),
		From:          event.From,
		To:            event.To,
		PaymentStatus: event.PaymentStatus,
		Actor:         event.Actor,
		OccurredAt:    event.OccurredAt.UTC(),
	}
	if event.DriverID != nil {
		id := event.DriverID.String()
		msg.DriverID = &id
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: value,
		Time:  msg.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(orderStatusChangedType)},
		},
	})
	if err != nil {
		return errs.NewUpstreamUnavailableErrorWithCause("kafka", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
