/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the rate engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, RATE_ENGINE_* variables)
  2. Parse command-line flags (defaults come from step 1)
  3. Initialize logger and SQLite store
  4. Create API handler and router
  5. Start override reconciliation scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port            HTTP server port (default: 8080)
  -db              SQLite database path (default: rates.db)
                   Use ":memory:" for in-memory database
  -log-level       debug, info, warn, error
  -log-format      console, json
  -matrix-workers  Parallel matrix cells (0 = GOMAXPROCS)
  -reconcile-every Override reconciliation interval (0 = disabled)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  ./server -db="./data/rates.db"
  RATE_ENGINE_LOG_FORMAT=json ./server -port=3000

SEE ALSO:
  - internal/config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/rate-engine/api"
	"github.com/warp/rate-engine/internal/config"
	"github.com/warp/rate-engine/internal/logging"
	"github.com/warp/rate-engine/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (console, json)")
	flag.IntVar(&cfg.MatrixWorkers, "matrix-workers", cfg.MatrixWorkers, "Parallel matrix cells (0 = GOMAXPROCS)")
	flag.DurationVar(&cfg.ReconcileEvery, "reconcile-every", cfg.ReconcileEvery, "Override reconciliation interval (0 = disabled)")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	logCfg.Level, logCfg.Format = cfg.LogLevel, cfg.LogFormat
	log := logging.Must(logCfg)
	defer log.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.String("db", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, log)
	handler.MatrixBuilder.Workers = cfg.MatrixWorkers

	// Start override reconciliation
	scheduler := api.NewReconciliationScheduler(store, handler.Resolver, log)
	scheduler.CheckInterval = cfg.ReconcileEvery
	scheduler.Enabled = cfg.ReconcileEvery > 0
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DBPath),
			zap.Int("matrix_workers", cfg.MatrixWorkers),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
