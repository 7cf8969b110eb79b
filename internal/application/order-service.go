package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vkarpenko/order-lifecycle-service/internal/domain"
	"github.com/vkarpenko/order-lifecycle-service/internal/inventory"
	"github.com/vkarpenko/order-lifecycle-service/internal/logger"
	"github.com/vkarpenko/order-lifecycle-service/internal/notification"
	"github.com/vkarpenko/order-lifecycle-service/internal/repository"
)

// IDGenerator supplies ids for new orders. Injected so construction is
// deterministic under test.
type IDGenerator func() string

func UUIDGenerator() string { return uuid.NewString() }

var hundred = decimal.NewFromInt(100)

// OrderService drives the order lifecycle: validated creation against
// available stock, lookup, cancellation with stock release, and discount
// application. Collaborator failures are returned as-is; domain failures
// carry a kind (see domain.KindOf).
type OrderService struct {
	repo     repository.OrderRepo
	stock    inventory.Inventory
	notifier notification.Notifier
	newID    IDGenerator
}

func NewOrderService(repo repository.OrderRepo, stock inventory.Inventory, notifier notification.Notifier, newID IDGenerator) *OrderService {
	if newID == nil {
		newID = UUIDGenerator
	}
	return &OrderService{
		repo:     repo,
		stock:    stock,
		notifier: notifier,
		newID:    newID,
	}
}

// CreateOrder validates the request, checks stock for every item, then
// persists the order, reserves stock and sends the confirmation, in that
// order. Nothing is persisted or reserved when validation or a stock
// check fails.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, items []domain.OrderItem) (domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return domain.Order{}, domain.ErrValidation("customer id cannot be empty")
	}
	if len(items) == 0 {
		return domain.Order{}, domain.ErrValidation("order must contain at least one item")
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Order{}, domain.ErrValidation("item product id cannot be empty")
		}
		if it.Quantity <= 0 {
			return domain.Order{}, domain.ErrValidation("item quantity must be positive")
		}
		if it.UnitPrice.IsNegative() {
			return domain.Order{}, domain.ErrValidation("item unit price cannot be negative")
		}
	}

	for _, it := range items {
		ok, err := s.stock.IsInStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		if !ok {
			return domain.Order{}, domain.ErrInsufficientStock(it.ProductID)
		}
	}

	order := domain.NewOrder(s.newID(), customerID, items, CalculateTotal(items))

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		logger.Warn("order save failed", "order_id", order.ID, "err", err)
		return domain.Order{}, err
	}

	// No transaction spans the save and the reservations: a failure here
	// leaves a pending order without its holds, and the caller decides
	// whether to retry or compensate.
	for _, it := range saved.Items {
		if err := s.stock.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			logger.Warn("stock reserve failed after save", "order_id", saved.ID, "product_id", it.ProductID, "err", err)
			return domain.Order{}, err
		}
	}

	if err := s.notifier.SendOrderConfirmation(ctx, saved.CustomerID, saved.ID); err != nil {
		// The order is already committed; the send failure propagates
		// without rolling anything back.
		logger.Warn("confirmation send failed", "order_id", saved.ID, "err", err)
		return domain.Order{}, err
	}

	logger.Info("order created", "order_id", saved.ID, "customer_id", saved.CustomerID, "total", saved.Total.String())
	return saved, nil
}

// FindOrder returns (nil, nil) for a blank id without touching the
// repository; otherwise it reports whatever the repository reports.
func (s *OrderService) FindOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, nil
	}
	return s.repo.FindByID(ctx, orderID)
}

// CancelOrder releases every item's reservation, marks the order
// cancelled and persists it, then sends the cancellation notice. Shipped
// orders cannot be cancelled, and a cancelled order cannot be cancelled
// again.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound(orderID)
	}
	switch order.Status {
	case domain.StatusShipped:
		return domain.ErrStateConflict("cannot cancel shipped order", orderID)
	case domain.StatusCancelled:
		return domain.ErrStateConflict("order is already cancelled", orderID)
	}

	for _, it := range order.Items {
		if err := s.stock.Release(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	if _, err := s.repo.Save(ctx, order.Cancelled()); err != nil {
		logger.Warn("cancel save failed", "order_id", orderID, "err", err)
		return err
	}

	if err := s.notifier.SendCancellationConfirmation(ctx, order.CustomerID, orderID); err != nil {
		logger.Warn("cancellation send failed", "order_id", orderID, "err", err)
		return err
	}

	logger.Info("order cancelled", "order_id", orderID)
	return nil
}

// CalculateTotal sums unit price times quantity over the items using
// exact decimal arithmetic. An empty slice sums to zero.
func CalculateTotal(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ApplyDiscount rescales the order's current total by (100 - percentage)
// / 100 and persists the result. Applying it twice compounds.
func (s *OrderService) ApplyDiscount(ctx context.Context, orderID string, percentage decimal.Decimal) (domain.Order, error) {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return domain.Order{}, domain.ErrValidation("discount must be between 0 and 100")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrOrderNotFound(orderID)
	}

	multiplier := hundred.Sub(percentage).Div(hundred)
	saved, err := s.repo.Save(ctx, order.WithTotal(order.Total.Mul(multiplier)))
	if err != nil {
		return domain.Order{}, err
	}

	logger.Info("discount applied", "order_id", orderID, "percentage", percentage.String(), "total", saved.Total.String())
	return saved, nil
}
