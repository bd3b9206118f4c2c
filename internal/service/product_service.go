package service

import (
	"context"
	"time"

	"product-service/internal/model"
	"product-service/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
		now:         time.Now,
	}
}

// timestamp returns the current time at the resolution both backends store.
func (s *productService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// List retrieves all products.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, model.StorageError(model.MsgListFailed, err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, model.GetFailed(id, err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.NotFound(id)
	}

	return product, nil
}

// Create validates the request and persists a new product in its own transaction.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (_ *model.Product, err error) {
	if req == nil || req.Name == nil {
		return nil, model.ErrNameRequired
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, model.StorageError(model.MsgCreateFailed, err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	createdAt := s.timestamp()
	updatedAt := createdAt
	product := &model.Product{
		Name:      *req.Name,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}

	if err = tx.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, model.StorageError(model.MsgCreateFailed, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to commit transaction")
		return nil, model.StorageError(model.MsgCreateFailed, err)
	}

	s.logger.Info().Int64("product_id", product.ID).Msg("product created")

	return product, nil
}

// Update renames an existing product in its own transaction. The lookup runs
// before the request is validated, so an unknown id reports NotFound even
// when the body is also invalid.
func (s *productService) Update(ctx context.Context, id int64, req *model.ProductRequest) (_ *model.Product, err error) {
	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to begin transaction")
		return nil, model.UpdateFailed(id, err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	product, err := tx.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to load product for update")
		return nil, model.UpdateFailed(id, err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.NotFound(id)
	}

	if req == nil || req.Name == nil {
		return nil, model.ErrNameRequired
	}

	product.Name = *req.Name
	// Rows without a created_at have nothing to clamp against.
	updatedAt := s.timestamp()
	if product.CreatedAt != nil && updatedAt.Before(*product.CreatedAt) {
		updatedAt = *product.CreatedAt
	}
	product.UpdatedAt = &updatedAt

	if err = tx.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, model.UpdateFailed(id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to commit transaction")
		return nil, model.UpdateFailed(id, err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return product, nil
}

// Delete removes a product in its own transaction.
func (s *productService) Delete(ctx context.Context, id int64) (err error) {
	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to begin transaction")
		return model.DeleteFailed(id, err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, tx)
		}
	}()

	product, err := tx.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to load product for delete")
		return model.DeleteFailed(id, err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return model.NotFound(id)
	}

	if err = tx.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return model.DeleteFailed(id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to commit transaction")
		return model.DeleteFailed(id, err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")

	return nil
}

// Search returns the products whose name contains query under Unicode case folding.
func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, model.StorageError(model.MsgSearchFailed, err)
	}

	matcher := NewNameMatcher(query)
	matches := make([]model.Product, 0, len(products))
	for _, p := range products {
		if matcher.Match(p.Name) {
			matches = append(matches, p)
		}
	}

	s.logger.Debug().
		Str("query", query).
		Int("scanned", len(products)).
		Int("matched", len(matches)).
		Msg("searched products")

	return matches, nil
}

func (s *productService) rollback(ctx context.Context, tx repository.ProductTx) {
	if err := tx.Rollback(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}
