package notification

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaNotifier struct {
	w *kafka.Writer
}

func NewKafkaNotifier(brokersSTR, topic string) *KafkaNotifier {
	brokers := strings.Split(brokersSTR, ",")

	return &KafkaNotifier{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (n *KafkaNotifier) Close() error {
	return n.w.Close()
}

func (n *KafkaNotifier) SendOrderConfirmation(ctx context.Context, customerID, orderID string) error {
	return n.publish(ctx, EventOrderConfirmed, customerID, orderID)
}

func (n *KafkaNotifier) SendCancellationConfirmation(ctx context.Context, customerID, orderID string) error {
	return n.publish(ctx, EventOrderCancelled, customerID, orderID)
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType, customerID, orderID string) error {
	b, err := json.Marshal(Event{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return n.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}
