package service

import (
	"context"

	"product-service/internal/model"
)

// ProductService defines operations for product management.
// Every error returned is a *model.DomainError.
type ProductService interface {
	// List retrieves all products.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create validates the request and persists a new product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update renames an existing product and refreshes updated_at.
	// NotFound takes precedence over a missing name.
	Update(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id int64) error

	// Search returns products whose name contains query, ignoring case.
	Search(ctx context.Context, query string) ([]model.Product, error)
}
