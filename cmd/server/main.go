/*
main.go - Application entry point

PURPOSE:
  Starts the keg tracking server for the bar. Wires configuration,
  logging, the chosen database backend, the ledger and inventory
  services, the HTTP API and the background stock watcher, then runs
  until asked to stop.

STARTUP SEQUENCE:
  1. Load .env (if present) and the optional -config YAML file
  2. Build the zap logger for the configured environment
  3. Open the store: SQLite file by default, Postgres via db.driver
     (migrations run automatically on open)
  4. Wire ledger + inventory services and the HTTP router
  5. Start the stock alert watcher
  6. Serve until SIGINT/SIGTERM

CONFIGURATION:
  -config   path to a YAML file (optional)
  Everything can also come from FUTS_* environment variables, and
  everything has a default. See config/config.go for the key list.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the stock watcher and close the database

EXAMPLES:
  # Zero config: SQLite file futs.db next to the binary
  ./server

  # Scratch database
  FUTS_DB_PATH=":memory:" ./server

  # Postgres
  FUTS_DB_DRIVER=postgres FUTS_DB_DSN="postgres://..." ./server

SEE ALSO:
  - config/config.go: keys, defaults, env mapping
  - api/server.go: router configuration
  - store/sqlite/sqlite.go, store/postgres/postgres.go: backends
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/api"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/config"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/inventory"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/logging"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/store/postgres"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/store/sqlite"
)

// storage is everything the server needs from a database backend.
// Both store implementations satisfy it.
type storage interface {
	ledger.TxStore
	ledger.ClientStore
	catalog.Store
	inventory.Store

	Reset(ctx context.Context) error
	Close() error
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	// Load .env before reading FUTS_* variables.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store init failed", zap.Error(err))
		return
	}
	defer store.Close()
	logger.Info("store ready", zap.String("driver", cfg.DB.Driver))

	ledgerSvc := ledger.NewService(store, store, store, cfg.FeeSchedule())
	inventorySvc := inventory.NewService(store, store)

	handler := api.NewHandler(ledgerSvc, inventorySvc, store, logger)
	handler.Resetter = store

	router := api.NewRouter(handler, api.RouterOptions{
		ExposeMetrics:  cfg.Metrics.Enabled,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	watcher := inventory.NewWatcher(inventorySvc, logger)
	watcher.Enabled = cfg.Watcher.Enabled
	watcher.Interval = cfg.Watcher.Interval
	watcher.Start()
	defer watcher.Stop()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DB.DSN)
	case config.DriverSQLite:
		return sqlite.New(cfg.DB.Path)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.DB.Driver)
	}
}
