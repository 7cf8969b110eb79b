// Package inventory tracks available stock per product. The lifecycle
// service only consumes the Inventory interface; the Redis store is the
// adapter the binary wires in.
package inventory

import "context"

type Inventory interface {
	IsInStock(ctx context.Context, productID string, quantity int) (bool, error)
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}
