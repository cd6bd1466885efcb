// File: cmd/store.go
package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/outbreak-cli/internal/config"
	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
	"github.com/xkilldash9x/outbreak-cli/internal/observability"
	"github.com/xkilldash9x/outbreak-cli/internal/store"
)

// runStore is the part of store.Store the commands use.
type runStore interface {
	Migrate(ctx context.Context) error
	PersistRun(ctx context.Context, run store.Run) error
	GetDailyCounts(ctx context.Context, runID uuid.UUID) ([]epidemic.DailyCounts, error)
}

// storeProvider creates a runStore. Tests inject a fake instead of a live database.
type storeProvider interface {
	// Create returns the store and a cleanup function releasing its resources.
	Create(ctx context.Context, cfg *config.Config) (runStore, func(), error)
}

type defaultStoreProvider struct{}

// NewStoreProvider returns the PostgreSQL backed provider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects a pgx pool to database.url and wraps it in a store.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg *config.Config) (runStore, func(), error) {
	logger := observability.GetLogger()
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (%s_DATABASE_URL)", config.EnvPrefix)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	runs, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store service: %w", err)
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return runs, cleanup, nil
}

// persistRun saves run when a database is configured and is a no-op otherwise.
func persistRun(ctx context.Context, logger *zap.Logger, cfg *config.Config, provider storeProvider, run store.Run) error {
	if cfg.Database.URL == "" {
		logger.Debug("No database configured; run not persisted.")
		return nil
	}

	runs, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := runs.Migrate(ctx); err != nil {
		return err
	}
	if err := runs.PersistRun(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	logger.Info("Run persisted", zap.Stringer("run_id", run.ID))
	return nil
}
