package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"product-service/internal/config"
	"product-service/internal/repository"

	"github.com/rs/zerolog"
)

// schemaTimeout bounds the schema check made at startup and on readiness probes.
const schemaTimeout = 5 * time.Second

// Store owns the product repository for the configured backend and tracks
// whether it is ready to serve.
type Store struct {
	repo   repository.ProductRepository
	logger zerolog.Logger

	mu        sync.Mutex
	schemaErr error
}

// Open selects the backend from cfg and opens the product store. Only
// configuration errors are returned: an unreachable database or a failed
// schema check is logged and recorded, and the store starts degraded.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "database").Str("backend", backend).Logger()

	var repo repository.ProductRepository
	switch backend {
	case config.BackendPostgres:
		logger.Info().
			Int("max_connections", cfg.MaxConnections).
			Int("min_connections", cfg.MinConnections).
			Msg("creating database connection pool")

		pool, err := repository.NewPool(ctx, cfg.URL, &repository.DBConfig{
			MaxOpenConns:    int32(cfg.MaxConnections),
			MaxIdleConns:    int32(cfg.MinConnections),
			ConnMaxLifetime: cfg.ConnMaxLifetime(),
			ConnMaxIdleTime: 30 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		repo = repository.NewProductRepository(pool, logger)
	case config.BackendMySQL:
		logger.Info().
			Int("max_connections", cfg.MaxConnections).
			Int("min_connections", cfg.MinConnections).
			Msg("creating database connection pool")

		dsn, err := repository.MySQLDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		db, err := repository.OpenMySQL(dsn, &repository.DBConfig{
			MaxOpenConns:    int32(cfg.MaxConnections),
			MaxIdleConns:    int32(cfg.MinConnections),
			ConnMaxLifetime: cfg.ConnMaxLifetime(),
			ConnMaxIdleTime: 30 * time.Minute,
		}, cfg.Debug)
		if err != nil {
			return nil, err
		}
		repo = repository.NewMySQLProductRepository(db, logger)
	default:
		dsn := cfg.SQLiteDSN()
		logger.Info().Str("path", dsn).Msg("opening embedded database")

		db, err := repository.OpenSQLite(dsn, cfg.Debug)
		if err != nil {
			return nil, err
		}
		repo = repository.NewSQLiteProductRepository(db, logger)
	}

	store := NewStore(repo, logger)
	_ = store.initSchema(ctx)

	return store, nil
}

// NewStore wraps an already opened repository.
func NewStore(repo repository.ProductRepository, logger zerolog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
	}
}

// Products returns the product repository.
func (s *Store) Products() repository.ProductRepository {
	return s.repo
}

// Backend returns the name of the storage engine in use.
func (s *Store) Backend() string {
	return s.repo.Backend()
}

// Ready reports nil when the schema is in place and storage answers a ping.
// A schema check that failed earlier is retried first.
func (s *Store) Ready(ctx context.Context) error {
	s.mu.Lock()
	pending := s.schemaErr != nil
	s.mu.Unlock()

	if pending {
		if err := s.initSchema(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("storage unreachable: %w", err)
	}

	return nil
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.repo.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	err := s.repo.EnsureSchema(ctx)
	if err != nil {
		err = fmt.Errorf("schema initialisation failed: %w", err)
		s.logger.Warn().Err(err).Msg("storage degraded")
	} else {
		s.logger.Info().Msg("schema ready")
	}

	s.mu.Lock()
	s.schemaErr = err
	s.mu.Unlock()

	return err
}
