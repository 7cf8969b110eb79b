package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vkarpenko/order-lifecycle-service/internal/domain"
	"github.com/vkarpenko/order-lifecycle-service/internal/logger"
)

type OrderRepo interface {
	// Save is create-or-update and returns the canonical persisted copy.
	Save(ctx context.Context, order domain.Order) (domain.Order, error)
	// FindByID returns (nil, nil) when no order has the given id.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (r *OrderRepository) Save(ctx context.Context, o domain.Order) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		logger.Warn("begin tx failed", "err", err)
		return domain.Order{}, err
	}

	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// xmax = 0 distinguishes a fresh insert from an update; items are
	// written only on first save since the item list is fixed at creation.
	var inserted bool
	err = tx.QueryRow(ctx,
		`INSERT INTO orders.orders
			(id, customer_id, total, status, created_at, updated_at)
		 VALUES
			($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		 RETURNING (xmax = 0)
		`,
		o.ID,
		o.CustomerID,
		o.Total.String(),
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		logger.Warn("orders upsert failed", "id", o.ID, "err", err)
		return domain.Order{}, err
	}

	if inserted && len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for pos, it := range o.Items {
			batch.Queue(`
				INSERT INTO orders.order_items (order_id, position, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
			`,
				o.ID,
				pos,
				it.ProductID,
				it.Quantity,
				it.UnitPrice.String(),
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return domain.Order{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Warn("commit failed", "id", o.ID, "err", err)
		return domain.Order{}, err
	}
	tx = nil
	return o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, total::text, status, created_at, updated_at
		 FROM orders.orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.CustomerID, &total, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price::text
		 FROM orders.order_items WHERE order_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    domain.OrderItem
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
