// Package main is the entry point for the prompt marketplace server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
//  1. Read configuration (YAML file + environment overrides)
//  2. Create dependencies (logger, Sentry, the store)
//  3. Hand them to the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
//
// COMMANDS:
//
//	server [serve]   run the HTTP API (the default when no command is given)
//	server migrate   open the store, which applies the schema, then exit
//	server seed      insert the reference catalog into an empty store
//
// Every command shares the persistent --config flag.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/sakif/prompt-market/internal/auth"
	"github.com/sakif/prompt-market/internal/config"
	"github.com/sakif/prompt-market/internal/repository"
	"github.com/sakif/prompt-market/internal/seed"
	"github.com/sakif/prompt-market/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Prompt marketplace API server",
	Long: `Serves the prompt marketplace JSON API: the catalog, accounts,
favorites, cart, purchases and reviews.

Configuration is read from the YAML file given by --config (optional) and
then overridden by environment variables such as PORT, STORE_DRIVER,
DB_PATH, DATABASE_URL and JWT_SECRET.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until SIGINT/SIGTERM",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, store, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Info("schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo users, categories and prompts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, store, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := seed.Run(cmd.Context(), store, auth.NewPasswordService(), logger)
		if err != nil {
			return err
		}
		if !res.Skipped {
			logger.Info("seeded store",
				slog.Int("categories", res.Categories),
				slog.Int("users", res.Users),
				slog.Int("prompts", res.Prompts),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, store, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	// === SENTRY ===
	// Optional: with no DSN every sentry call is a no-op.
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Env,
		}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.SeedOnStart {
		if _, err := seed.Run(cmd.Context(), store, auth.NewPasswordService(), logger); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	return srv.Start()
}

// bootstrap loads and validates the configuration, builds the logger and
// opens the store. The caller owns the store and must Close it.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, repository.Store, error) {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	// === 2. LOGGING ===
	// Text for a terminal, JSON for log shippers.
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	// === 3. STORE ===
	// Opening a SQL store applies its schema.
	store, err := server.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("store opened", slog.String("driver", cfg.Store.Driver))
	return cfg, logger, store, nil
}
