package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-service/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mysqlSchema is applied at startup and is safe to run repeatedly. GORM's
// generated CHECK uses length(), which counts bytes on MySQL, so the table is
// declared by hand and VARCHAR(100) enforces the bound in characters.
const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// gormProductRepository implements ProductRepository through GORM. It backs
// the embedded SQLite fallback and MySQL.
type gormProductRepository struct {
	db      *gorm.DB
	backend string
	// schema is the DDL run by EnsureSchema; empty lets GORM create the table.
	schema string
	// lockRows adds FOR UPDATE to reads made inside a transaction.
	lockRows bool
	logger   zerolog.Logger
}

// NewSQLiteProductRepository creates a product repository on an embedded
// SQLite database. It is the fallback store when no DATABASE_URL is set.
func NewSQLiteProductRepository(db *gorm.DB, logger zerolog.Logger) ProductRepository {
	return newGormProductRepository(db, "sqlite", "", false, logger)
}

// NewMySQLProductRepository creates a product repository on MySQL.
func NewMySQLProductRepository(db *gorm.DB, logger zerolog.Logger) ProductRepository {
	return newGormProductRepository(db, "mysql", mysqlSchema, true, logger)
}

func newGormProductRepository(db *gorm.DB, backend, schema string, lockRows bool, logger zerolog.Logger) *gormProductRepository {
	return &gormProductRepository{
		db:       db,
		backend:  backend,
		schema:   schema,
		lockRows: lockRows,
		logger:   logger.With().Str("repository", "product").Str("backend", backend).Logger(),
	}
}

func (r *gormProductRepository) List(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	for i := range products {
		products[i] = inUTC(products[i])
	}
	return products, nil
}

func (r *gormProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return findProduct(r.db.WithContext(ctx), r.logger, id, false)
}

func (r *gormProductRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &gormProductTx{tx: tx, lockRows: r.lockRows, logger: r.logger}, nil
}

// EnsureSchema creates the products table when it is missing. Existing
// tables are left untouched.
func (r *gormProductRepository) EnsureSchema(ctx context.Context) error {
	if r.schema != "" {
		if err := r.db.WithContext(ctx).Exec(r.schema).Error; err != nil {
			r.logger.Error().Err(err).Msg("failed to create products table")
			return fmt.Errorf("failed to create products table: %w", err)
		}
		return nil
	}

	migrator := r.db.WithContext(ctx).Migrator()
	if migrator.HasTable(&model.Product{}) {
		return nil
	}
	if err := migrator.CreateTable(&model.Product{}); err != nil {
		r.logger.Error().Err(err).Msg("failed to create products table")
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

func (r *gormProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (r *gormProductRepository) Backend() string {
	return r.backend
}

func (r *gormProductRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// gormProductTx implements ProductTx over a GORM transaction. SQLite has no
// row locks; its single-connection pool serialises writers instead.
type gormProductTx struct {
	tx       *gorm.DB
	lockRows bool
	logger   zerolog.Logger
}

func (t *gormProductTx) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return findProduct(t.tx.WithContext(ctx), t.logger, id, t.lockRows)
}

func (t *gormProductTx) Create(ctx context.Context, product *model.Product) error {
	if err := t.tx.WithContext(ctx).Create(product).Error; err != nil {
		t.logger.Error().Err(err).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	t.logger.Debug().Int64("product_id", product.ID).Msg("product created")

	return nil
}

func (t *gormProductTx) Update(ctx context.Context, product *model.Product) error {
	// A map is used so that an empty name is still written.
	result := t.tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"updated_at": product.UpdatedAt,
		})
	if err := result.Error; err != nil {
		t.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to update product: %d rows affected", result.RowsAffected)
	}

	return nil
}

func (t *gormProductTx) Delete(ctx context.Context, id int64) error {
	result := t.tx.WithContext(ctx).Delete(&model.Product{}, id)
	if err := result.Error; err != nil {
		t.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.RowsAffected != 1 {
		return fmt.Errorf("failed to delete product: %d rows affected", result.RowsAffected)
	}

	return nil
}

func (t *gormProductTx) Commit(_ context.Context) error {
	if err := t.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *gormProductTx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func findProduct(db *gorm.DB, logger zerolog.Logger, id int64, forUpdate bool) (*model.Product, error) {
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p model.Product
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	p = inUTC(p)
	return &p, nil
}
