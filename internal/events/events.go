// Package events publishes order lifecycle events to Kafka. Publishing is
// best effort and entirely optional: with no brokers configured every call
// is a no-op, so the storefront runs standalone.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrders = "norahair.orders"

	EventOrderCreated    = "order.created"
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	Reference string         `json:"reference,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokersCSV string) *Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicOrders,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Publisher) Publish(ctx context.Context, eventType, orderID, ref string, payload map[string]any) error {
	if !p.Enabled() {
		return nil
	}
	evt := Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		Reference: ref,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(orderID), Value: data, Time: evt.CreatedAt})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
