package repository

import (
	"context"

	"product-service/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves every product in storage order.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	// Returns (nil, nil) when no product has that ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// BeginTx starts a new transaction for a write operation.
	BeginTx(ctx context.Context) (ProductTx, error)

	// EnsureSchema creates the products table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Ping verifies the storage engine is reachable.
	Ping(ctx context.Context) error

	// Backend names the storage engine: "postgres", "mysql" or "sqlite".
	Backend() string

	// Close releases the underlying connections.
	Close() error
}

// ProductTx is a single write transaction over the products table.
// Callers must finish with exactly one of Commit or Rollback.
type ProductTx interface {
	// GetByID retrieves a product inside the transaction, locking it where
	// the engine supports row locks. Returns (nil, nil) when not found.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create inserts the product and sets its generated ID.
	Create(ctx context.Context, product *model.Product) error

	// Update persists the product's name and updated_at.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes the product with the given ID.
	Delete(ctx context.Context, id int64) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
