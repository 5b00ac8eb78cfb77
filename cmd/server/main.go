/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tip pool server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults < YAML < env < flags)
  2. Open the template store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file
  -port    HTTP server port (default: 8080)
  -store   memory | sqlite | postgres | mongo (default: sqlite)
  -db      SQLite database path (default: tips.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_timeout, 30s default)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/tips.db"

  # Run without persistence
  ./server -store=memory

  # Run against Postgres
  DATABASE_URL=postgres://tips@localhost/tips ./server -store=postgres

ENVIRONMENT:
  See config/config.go.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration sources
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/tip-engine/api"
	"github.com/warp/tip-engine/auth"
	"github.com/warp/tip-engine/config"
	"github.com/warp/tip-engine/metrics"
	"github.com/warp/tip-engine/roster"
	"github.com/warp/tip-engine/store/memory"
	"github.com/warp/tip-engine/store/mongo"
	"github.com/warp/tip-engine/store/postgres"
	"github.com/warp/tip-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := cfg.ServerLog

	// Initialize store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := openStore(ctx, cfg.Store)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to initialize %s store: %v", cfg.Store.Driver, err)
	}
	defer closeStore()

	// Initialize handler
	var verifier *auth.Verifier
	if cfg.Auth.Secret != "" {
		verifier = &auth.Verifier{
			Secret:   []byte(cfg.Auth.Secret),
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}
	} else {
		logger.Printf("Warning: AUTH_JWT_SECRET not set, template routes disabled")
	}
	handler := api.NewHandler(roster.NewService(store), metrics.NewDefault(), logger)

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Verifier:       verifier,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Printf("Server starting on http://localhost:%d (store: %s)", cfg.Port, cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server stopped")
}

// openStore returns the configured backend and a function that releases it.
func openStore(ctx context.Context, cfg config.StoreConfig) (roster.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.DriverMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Close(ctx)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
