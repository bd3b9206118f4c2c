// Command check_db verifies that the database selected by DATABASE_URL is
// reachable and reports the state of the products table.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"product-service/internal/config"
	"product-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, _ := cfg.Database.Backend()
	switch backend {
	case config.BackendPostgres:
		err = checkPostgres(ctx, cfg.Database.URL)
	case config.BackendMySQL:
		err = checkMySQL(ctx, cfg.Database.URL)
	default:
		err = checkSQLite(ctx, cfg.Database.SQLiteDSN())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func checkPostgres(ctx context.Context, connString string) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("QueryRow failed: %w", err)
	}

	fmt.Printf("Successfully connected to database: %s\n", dbName)

	// List all databases
	rows, err := conn.Query(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname")
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Println("\nAvailable databases:")
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}

	var table *string
	if err := conn.QueryRow(ctx, "SELECT to_regclass('products')::text").Scan(&table); err != nil {
		return fmt.Errorf("table lookup failed: %w", err)
	}
	if table == nil {
		fmt.Println("\nproducts table: missing (created on first server start)")
		return nil
	}

	var count int64
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	fmt.Printf("\nproducts table: %d rows\n", count)

	return nil
}

func checkMySQL(ctx context.Context, url string) error {
	dsn, err := repository.MySQLDSN(url)
	if err != nil {
		return err
	}

	db, err := repository.OpenMySQL(dsn, nil, false)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	var dbName string
	if err := db.WithContext(ctx).Raw("SELECT DATABASE()").Scan(&dbName).Error; err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	fmt.Printf("Successfully connected to MySQL database: %s\n", dbName)

	return reportTable(ctx, db)
}

func checkSQLite(ctx context.Context, dsn string) error {
	db, err := repository.OpenSQLite(dsn, false)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	fmt.Printf("Successfully opened SQLite database: %s\n", dsn)

	return reportTable(ctx, db)
}

// reportTable prints the products row count for a GORM-backed store.
func reportTable(ctx context.Context, db *gorm.DB) error {
	if !db.WithContext(ctx).Migrator().HasTable("products") {
		fmt.Println("\nproducts table: missing (created on first server start)")
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Table("products").Count(&count).Error; err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	fmt.Printf("\nproducts table: %d rows\n", count)

	return nil
}
