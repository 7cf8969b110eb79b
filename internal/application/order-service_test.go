package application

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/order-lifecycle-service/internal/domain"
	"github.com/vkarpenko/order-lifecycle-service/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type stockCall struct {
	productID string
	quantity  int
}

type fakeRepo struct {
	orders  map[string]domain.Order
	saved   []domain.Order
	finds   int
	saveErr error
	findErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]domain.Order)}
}

func (f *fakeRepo) Save(_ context.Context, o domain.Order) (domain.Order, error) {
	if f.saveErr != nil {
		return domain.Order{}, f.saveErr
	}
	f.saved = append(f.saved, o)
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

type fakeInventory struct {
	stock      map[string]int
	checks     []stockCall
	reserved   []stockCall
	released   []stockCall
	reserveErr error
	releaseErr error
}

func newFakeInventory(stock map[string]int) *fakeInventory {
	if stock == nil {
		stock = make(map[string]int)
	}
	return &fakeInventory{stock: stock}
}

func (f *fakeInventory) IsInStock(_ context.Context, productID string, quantity int) (bool, error) {
	f.checks = append(f.checks, stockCall{productID, quantity})
	return f.stock[productID] >= quantity, nil
}

func (f *fakeInventory) Reserve(_ context.Context, productID string, quantity int) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved = append(f.reserved, stockCall{productID, quantity})
	return nil
}

func (f *fakeInventory) Release(_ context.Context, productID string, quantity int) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, stockCall{productID, quantity})
	return nil
}

type note struct {
	customerID string
	orderID    string
}

type fakeNotifier struct {
	confirmations []note
	cancellations []note
	sendErr       error
}

func (f *fakeNotifier) SendOrderConfirmation(_ context.Context, customerID, orderID string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.confirmations = append(f.confirmations, note{customerID, orderID})
	return nil
}

func (f *fakeNotifier) SendCancellationConfirmation(_ context.Context, customerID, orderID string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.cancellations = append(f.cancellations, note{customerID, orderID})
	return nil
}

func fixedID(id string) IDGenerator {
	return func() string { return id }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(productID string, quantity int, price string) domain.OrderItem {
	return domain.OrderItem{ProductID: productID, Quantity: quantity, UnitPrice: dec(price)}
}

type fixture struct {
	repo     *fakeRepo
	stock    *fakeInventory
	notifier *fakeNotifier
	svc      *OrderService
}

func newFixture(stock map[string]int) *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		stock:    newFakeInventory(stock),
		notifier: &fakeNotifier{},
	}
	f.svc = NewOrderService(f.repo, f.stock, f.notifier, fixedID("order-1"))
	return f
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("valid request persists, reserves and confirms", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 5})

		order, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{item("product-1", 2, "10.00")})
		require.NoError(t, err)

		assert.Equal(t, "order-1", order.ID)
		assert.Equal(t, "customer-123", order.CustomerID)
		assert.Equal(t, domain.StatusPending, order.Status)
		require.Len(t, order.Items, 1)
		assert.True(t, order.Total.Equal(dec("20.00")), "total = %s", order.Total)

		require.Len(t, f.repo.saved, 1)
		assert.Equal(t, []stockCall{{"product-1", 2}}, f.stock.reserved)
		assert.Equal(t, []note{{"customer-123", "order-1"}}, f.notifier.confirmations)
	})

	t.Run("blank customer id fails without collaborator calls", func(t *testing.T) {
		for _, customerID := range []string{"", "   "} {
			f := newFixture(map[string]int{"product-1": 5})

			_, err := f.svc.CreateOrder(ctx, customerID, []domain.OrderItem{item("product-1", 1, "10.00")})
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Contains(t, err.Error(), "customer id")

			assert.Empty(t, f.stock.checks)
			assert.Empty(t, f.repo.saved)
			assert.Empty(t, f.notifier.confirmations)
		}
	})

	t.Run("nil or empty items fail without collaborator calls", func(t *testing.T) {
		for _, items := range [][]domain.OrderItem{nil, {}} {
			f := newFixture(nil)

			_, err := f.svc.CreateOrder(ctx, "customer-123", items)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Contains(t, err.Error(), "at least one item")

			assert.Empty(t, f.stock.checks)
			assert.Empty(t, f.repo.saved)
		}
	})

	t.Run("invalid item fields are rejected", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 5})

		cases := []domain.OrderItem{
			item(" ", 1, "10.00"),
			item("product-1", 0, "10.00"),
			item("product-1", -2, "10.00"),
			item("product-1", 1, "-0.01"),
		}
		for _, it := range cases {
			_, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{it})
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		}
		assert.Empty(t, f.stock.checks)
	})

	t.Run("insufficient stock names the first failing product and has no side effects", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 1, "product-2": 100})

		_, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{
			item("product-1", 10, "10.00"),
			item("product-2", 1, "5.00"),
		})
		require.Error(t, err)
		assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
		assert.Contains(t, err.Error(), "product-1")

		// Short-circuits on the first failing check.
		assert.Equal(t, []stockCall{{"product-1", 10}}, f.stock.checks)
		assert.Empty(t, f.stock.reserved)
		assert.Empty(t, f.repo.saved)
		assert.Empty(t, f.notifier.confirmations)
	})

	t.Run("repository failure propagates as-is", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 5})
		sentinel := errors.New("db down")
		f.repo.saveErr = sentinel

		_, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{item("product-1", 1, "10.00")})
		require.ErrorIs(t, err, sentinel)
		assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
		assert.Empty(t, f.stock.reserved)
	})

	t.Run("notification failure propagates but the order stays committed", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 5})
		sentinel := errors.New("smtp down")
		f.notifier.sendErr = sentinel

		_, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{item("product-1", 1, "10.00")})
		require.ErrorIs(t, err, sentinel)

		require.Len(t, f.repo.saved, 1)
		assert.Equal(t, []stockCall{{"product-1", 1}}, f.stock.reserved)
	})

	t.Run("multi-item total is the exact decimal sum", func(t *testing.T) {
		f := newFixture(map[string]int{"product-1": 10, "product-2": 10})

		order, err := f.svc.CreateOrder(ctx, "customer-123", []domain.OrderItem{
			item("product-1", 3, "19.99"),
			item("product-2", 2, "0.05"),
		})
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(dec("60.07")), "total = %s", order.Total)
	})
}

func TestFindOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("blank id is absent without querying the repository", func(t *testing.T) {
		for _, id := range []string{"", "   "} {
			f := newFixture(nil)

			order, err := f.svc.FindOrder(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, order)
			assert.Zero(t, f.repo.finds)
		}
	})

	t.Run("delegates to the repository", func(t *testing.T) {
		f := newFixture(nil)
		stored := domain.NewOrder("order-9", "customer-1", []domain.OrderItem{item("p1", 1, "10")}, dec("10"))
		f.repo.orders["order-9"] = stored

		order, err := f.svc.FindOrder(ctx, "order-9")
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, "order-9", order.ID)

		absent, err := f.svc.FindOrder(ctx, "order-404")
		require.NoError(t, err)
		assert.Nil(t, absent)
		assert.Equal(t, 2, f.repo.finds)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture, status domain.OrderStatus) domain.Order {
		o := domain.NewOrder("order-1", "customer-123", []domain.OrderItem{
			item("product-1", 2, "10.00"),
			item("product-2", 1, "5.00"),
		}, dec("25.00"))
		o.Status = status
		f.repo.orders[o.ID] = o
		return o
	}

	t.Run("pending order releases stock, persists and notifies", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, domain.StatusPending)

		require.NoError(t, f.svc.CancelOrder(ctx, "order-1"))

		assert.Equal(t, []stockCall{{"product-1", 2}, {"product-2", 1}}, f.stock.released)
		require.Len(t, f.repo.saved, 1)
		assert.Equal(t, domain.StatusCancelled, f.repo.saved[0].Status)
		assert.Equal(t, []note{{"customer-123", "order-1"}}, f.notifier.cancellations)
	})

	t.Run("shipped order conflicts with no side effects", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, domain.StatusShipped)

		err := f.svc.CancelOrder(ctx, "order-1")
		require.Error(t, err)
		assert.Equal(t, domain.KindStateConflict, domain.KindOf(err))

		assert.Empty(t, f.stock.released)
		assert.Empty(t, f.repo.saved)
		assert.Empty(t, f.notifier.cancellations)
	})

	t.Run("already cancelled order conflicts again", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, domain.StatusCancelled)

		err := f.svc.CancelOrder(ctx, "order-1")
		require.Error(t, err)
		assert.Equal(t, domain.KindStateConflict, domain.KindOf(err))
		assert.Empty(t, f.stock.released)
	})

	t.Run("unknown id is not found, naming the id", func(t *testing.T) {
		f := newFixture(nil)

		err := f.svc.CancelOrder(ctx, "order-404")
		require.Error(t, err)
		assert.Equal(t, domain.KindOrderNotFound, domain.KindOf(err))
		assert.Contains(t, err.Error(), "order-404")
	})
}

func TestCalculateTotal(t *testing.T) {
	t.Run("empty items sum to zero", func(t *testing.T) {
		assert.True(t, CalculateTotal(nil).IsZero())
		assert.True(t, CalculateTotal([]domain.OrderItem{}).IsZero())
	})

	t.Run("sums unit price times quantity exactly", func(t *testing.T) {
		total := CalculateTotal([]domain.OrderItem{
			item("p1", 2, "10.00"),
			item("p2", 3, "0.10"),
		})
		assert.True(t, total.Equal(dec("20.30")), "total = %s", total)
	})

	t.Run("no float drift on repeating fractions", func(t *testing.T) {
		// 0.1 * 3 is famously not 0.3 in binary floating point.
		total := CalculateTotal([]domain.OrderItem{item("p1", 3, "0.1")})
		assert.True(t, total.Equal(dec("0.3")), "total = %s", total)
	})
}

func TestApplyDiscount(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture, total string) {
		o := domain.NewOrder("order-1", "customer-123", []domain.OrderItem{item("p1", 1, total)}, dec(total))
		f.repo.orders[o.ID] = o
	}

	t.Run("out-of-range percentage fails before the lookup", func(t *testing.T) {
		for _, pct := range []string{"-1", "-0.01", "100.01", "150"} {
			f := newFixture(nil)
			seed(f, "100.00")

			_, err := f.svc.ApplyDiscount(ctx, "order-1", dec(pct))
			require.Error(t, err, "pct=%s", pct)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Zero(t, f.repo.finds)
		}
	})

	t.Run("zero percent leaves the total unchanged", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, "100.00")

		order, err := f.svc.ApplyDiscount(ctx, "order-1", decimal.Zero)
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(dec("100.00")), "total = %s", order.Total)
	})

	t.Run("hundred percent drives the total to exactly zero", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, "100.00")

		order, err := f.svc.ApplyDiscount(ctx, "order-1", dec("100"))
		require.NoError(t, err)
		assert.True(t, order.Total.IsZero(), "total = %s", order.Total)
	})

	t.Run("twenty percent of 100.00 is exactly 80.00", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, "100.00")

		order, err := f.svc.ApplyDiscount(ctx, "order-1", dec("20"))
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(dec("80.00")), "total = %s", order.Total)
		require.Len(t, f.repo.saved, 1)
	})

	t.Run("applying twice compounds on the current total", func(t *testing.T) {
		f := newFixture(nil)
		seed(f, "100.00")

		_, err := f.svc.ApplyDiscount(ctx, "order-1", dec("20"))
		require.NoError(t, err)
		order, err := f.svc.ApplyDiscount(ctx, "order-1", dec("20"))
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(dec("64.00")), "total = %s", order.Total)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture(nil)

		_, err := f.svc.ApplyDiscount(ctx, "order-404", dec("10"))
		require.Error(t, err)
		assert.Equal(t, domain.KindOrderNotFound, domain.KindOf(err))
		assert.Contains(t, err.Error(), "order-404")
	})
}
