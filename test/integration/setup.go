package integration

import (
	"context"
	"testing"
	"time"

	"product-service/internal/config"
	"product-service/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Store     *database.Store
	Pool      *pgxpool.Pool // direct access for seeding and cleanup
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and opens the product store
// against it the same way the server does at startup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	store, err := database.Open(ctx, config.DatabaseConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if err := store.Ready(ctx); err != nil {
		t.Fatalf("store not ready: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		_ = store.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Store:     store,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts products with the given names and returns their ids in order.
func SeedProducts(t *testing.T, pool *pgxpool.Pool, names ...string) []int64 {
	t.Helper()

	ctx := context.Background()

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var id int64
		err := pool.QueryRow(ctx,
			"INSERT INTO products (name) VALUES ($1) RETURNING id",
			name,
		).Scan(&id)
		if err != nil {
			t.Fatalf("failed to seed product %q: %v", name, err)
		}
		ids = append(ids, id)
	}

	return ids
}

// CleanupDB removes all products and resets the id sequence.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE products RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to clean products: %v", err)
	}
}
