package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/prompt-market/internal/config"
	"github.com/sakif/prompt-market/internal/repository"
	"github.com/sakif/prompt-market/internal/repository/memory"
	"github.com/sakif/prompt-market/internal/repository/postgres"
	sqliteRepo "github.com/sakif/prompt-market/internal/repository/sqlite"
)

// OpenStore opens the configured storage backend and runs its migrations.
// It is the only place in the codebase that looks at the driver name.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not mistaken for the
// modernc.org/sqlite driver package it wraps.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil

	case config.DriverSQLite:
		if cfg.Path != ":memory:" {
			// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
			dir := filepath.Dir(cfg.Path)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened", slog.String("path", cfg.Path))
		return db, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("postgres store opened")
		return db, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
