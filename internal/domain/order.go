package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem is a single order line. Immutable once the order is built.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is the order aggregate. It is a value: mutations go through
// Cancelled and WithTotal, which return updated copies; the repository
// keeps identity continuity across versions.
type Order struct {
	ID         string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Items      []OrderItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewOrder builds a pending order. The item slice is copied so later
// changes to the caller's slice cannot reach into the aggregate.
func NewOrder(id, customerID string, items []OrderItem, total decimal.Decimal) Order {
	own := make([]OrderItem, len(items))
	copy(own, items)
	now := time.Now().UTC()
	return Order{
		ID:         id,
		CustomerID: customerID,
		Items:      own,
		Total:      total,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Cancelled returns a copy of the order with status CANCELLED.
func (o Order) Cancelled() Order {
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return o
}

// WithTotal returns a copy of the order carrying the given total.
func (o Order) WithTotal(total decimal.Decimal) Order {
	o.Total = total
	o.UpdatedAt = time.Now().UTC()
	return o
}
