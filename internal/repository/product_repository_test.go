package repository

import (
	"context"
	"testing"
	"time"

	"product-service/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres starts a PostgreSQL testcontainer and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return connStr
}

// setupTestDB creates a PostgreSQL testcontainer and returns a repository with the schema applied.
func setupTestDB(t *testing.T) (ProductRepository, *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	connStr := startPostgres(t)

	pool, err := NewPool(ctx, connStr, nil)
	require.NoError(t, err)

	repo := NewProductRepository(pool, zerolog.Nop())
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	t.Cleanup(func() {
		pool.Close()
	})

	return repo, pool
}

func TestProductRepository_EnsureSchemaIsIdempotent(t *testing.T) {
	repo, _ := setupTestDB(t)

	assert.NoError(t, repo.EnsureSchema(context.Background()))
	assert.Equal(t, "postgres", repo.Backend())
}

func TestProductRepository_CRUD(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	created := createProduct(t, repo, "Widget")
	assert.Equal(t, int64(1), created.ID)

	t.Run("GetByID returns the created product", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Widget", got.Name)
		assert.True(t, created.CreatedAt.Equal(*got.CreatedAt))
		assert.True(t, got.CreatedAt.Equal(*got.UpdatedAt))
		assert.Equal(t, time.UTC, got.CreatedAt.Location())
	})

	t.Run("GetByID returns nil for unknown id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Update changes name and updated_at", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)

		p, err := tx.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, p)

		p.Name = "Gadget"
		p.UpdatedAt = timePtr(p.UpdatedAt.Add(time.Second))
		require.NoError(t, tx.Update(ctx, p))
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Gadget", got.Name)
		assert.True(t, created.CreatedAt.Equal(*got.CreatedAt))
		assert.True(t, got.UpdatedAt.After(*got.CreatedAt))
	})

	t.Run("List returns products ordered by id", func(t *testing.T) {
		createProduct(t, repo, "Gizmo")

		products, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Less(t, products[0].ID, products[1].ID)
	})

	t.Run("Delete removes the product", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Delete(ctx, created.ID))
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestProductRepository_RejectsOverlongName(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	name := make([]byte, model.MaxNameLength+1)
	for i := range name {
		name[i] = 'x'
	}

	now := time.Now().UTC()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = tx.Create(ctx, &model.Product{Name: string(name), CreatedAt: timePtr(now), UpdatedAt: timePtr(now)})
	assert.Error(t, err)
}

func TestProductRepository_RollbackDiscardsWrites(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Create(ctx, &model.Product{Name: "Widget", CreatedAt: timePtr(now), UpdatedAt: timePtr(now)}))
	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, tx.Rollback(ctx))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	repo, pool := setupTestDB(t)
	ctx := context.Background()
	createProduct(t, repo, "Widget")

	// Close the pool to simulate database errors
	pool.Close()

	t.Run("List with closed pool", func(t *testing.T) {
		products, err := repo.List(ctx)
		require.Error(t, err)
		assert.Nil(t, products)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		product, err := repo.GetByID(ctx, 1)
		require.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("BeginTx with closed pool", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.Error(t, err)
		assert.Nil(t, tx)
	})

	t.Run("EnsureSchema with closed pool", func(t *testing.T) {
		assert.Error(t, repo.EnsureSchema(ctx))
	})
}

func TestProductRepository_NullTimestamps(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(t)

	pool, err := NewPool(ctx, connStr, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Table left behind by an earlier deployment: nullable timestamps, no defaults.
	_, err = pool.Exec(ctx, `
		CREATE TABLE products (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)
	`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (name) VALUES ('legacy')`)
	require.NoError(t, err)

	repo := NewProductRepository(pool, zerolog.Nop())
	require.NoError(t, repo.EnsureSchema(ctx))
	createProduct(t, repo, "Widget")

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "legacy", products[0].Name)
	assert.Nil(t, products[0].CreatedAt)
	assert.Nil(t, products[0].UpdatedAt)
	assert.NotNil(t, products[1].CreatedAt)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	p, err := tx.GetByID(ctx, products[0].ID)
	require.NoError(t, err)
	require.NotNil(t, p)

	p.UpdatedAt = timePtr(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, tx.Update(ctx, p))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CreatedAt)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, p.UpdatedAt.Equal(*got.UpdatedAt))
}
