package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-service/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresSchema is applied at startup and is safe to run repeatedly.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Str("backend", "postgres").Logger(),
	}
}

// List retrieves every product ordered by ID.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM products
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, inUTC(p))
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, r.pool, r.logger, id, false)
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &productTx{tx: tx, logger: r.logger}, nil
}

// EnsureSchema creates the products table if it does not exist.
func (r *productRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		r.logger.Error().Err(err).Msg("failed to create products table")
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// Ping verifies connectivity.
func (r *productRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (r *productRepository) Backend() string {
	return "postgres"
}

// Close closes the connection pool.
func (r *productRepository) Close() error {
	r.pool.Close()
	return nil
}

// productTx implements ProductTx over a pgx transaction.
type productTx struct {
	tx     pgx.Tx
	logger zerolog.Logger
}

// GetByID retrieves a product and locks its row until the transaction ends.
func (t *productTx) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, t.tx, t.logger, id, true)
}

// Create inserts a new product within the transaction.
func (t *productTx) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := t.tx.QueryRow(ctx, query, product.Name, product.CreatedAt, product.UpdatedAt).Scan(&product.ID)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	t.logger.Debug().Int64("product_id", product.ID).Msg("product created")

	return nil
}

// Update persists the product's name and updated_at within the transaction.
func (t *productTx) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := t.tx.Exec(ctx, query, product.ID, product.Name, product.UpdatedAt)
	if err != nil {
		t.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to update product: %d rows affected", tag.RowsAffected())
	}

	return nil
}

// Delete removes a product within the transaction.
func (t *productTx) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		t.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to delete product: %d rows affected", tag.RowsAffected())
	}

	return nil
}

func (t *productTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *productTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx used for single-row reads.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getProduct(ctx context.Context, q querier, logger zerolog.Logger, id int64, forUpdate bool) (*model.Product, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var p model.Product
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p = inUTC(p)
	return &p, nil
}

// inUTC normalises scanned timestamps; pgx returns TIMESTAMPTZ values in the
// local time zone. NULL columns stay nil.
func inUTC(p model.Product) model.Product {
	p.CreatedAt = utc(p.CreatedAt)
	p.UpdatedAt = utc(p.UpdatedAt)
	return p
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
