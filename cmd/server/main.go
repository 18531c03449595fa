/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance ledger HTTP service.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (defaults, YAML, .env, ATTENDANCE_* env)
  2. Apply command-line flag overrides
  3. Open the record store (csv, sqlite, postgres or memory)
  4. Build the ledger, with a Kafka notifier when brokers are configured
  5. Configure HTTP router and start the compaction scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)
  -port    HTTP server port (default from config: 8080)
  -store   Store backend: csv | sqlite | postgres | memory
  -path    Store file path

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown timeout, 30s default)
  3. Stop the scheduler, close the Kafka writer and the store
  4. Exit

EXAMPLES:
  # Run with the default CSV file
  ./server -path="./data/attendance.csv"

  # Run with SQLite
  ./server -store=sqlite -path="./data/attendance.db"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Configuration keys and environment variables
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/attendance-ledger/api"
	"github.com/warp/attendance-ledger/config"
	"github.com/warp/attendance-ledger/events/kafka"
	"github.com/warp/attendance-ledger/ledger"
	"github.com/warp/attendance-ledger/store"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	backend := flag.String("store", "", "store backend: csv, sqlite, postgres or memory (overrides config)")
	path := flag.String("path", "", "store path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *path != "" {
		cfg.Store.Path = *path
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	// Initialize store
	st, closeStore, err := store.Open(cfg.Store.Backend, cfg.Store.Path, logger)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore()

	opts := []ledger.Option{ledger.WithLogger(logger)}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		opts = append(opts, ledger.WithNotifier(publisher))
		logger.Info("publishing ledger events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	l := ledger.New(st, opts...)

	// Initialize handler and router
	handler := api.NewHandler(l, cfg.History.WindowDays, logger)
	router := api.NewRouter(handler)

	scheduler := api.NewCompactionScheduler(l, logger)
	scheduler.CheckInterval = cfg.Compaction.Interval
	scheduler.Enabled = cfg.Compaction.Enabled
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			"addr", server.Addr, "store", cfg.Store.Backend, "path", cfg.Store.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}
