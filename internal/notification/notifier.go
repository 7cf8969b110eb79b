// Package notification delivers customer-facing order notifications.
package notification

import (
	"context"
	"time"
)

// Event type constants for order notifications.
const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderCancelled = "order.cancelled"
)

// Event is the message envelope published for a notification.
type Event struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	SendOrderConfirmation(ctx context.Context, customerID, orderID string) error
	SendCancellationConfirmation(ctx context.Context, customerID, orderID string) error
}
