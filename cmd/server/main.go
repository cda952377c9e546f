/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the budget planner server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config file, then apply command-line flags
  2. Initialize SQLite store
  3. Pick the change feed: Redis when configured, in-process otherwise
  4. Start the autosaver
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  TOML config path (default: budget.toml, optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete
  3. Flush pending autosaves
  4. Close feed and database
  5. Exit

ENVIRONMENT:
  REDIS_ADDR  Enables the Redis change feed (overrides config)

EXAMPLES:
  ./server -db=":memory:"
  REDIS_ADDR=localhost:6379 ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sundrop/budget-planner/api"
	"github.com/sundrop/budget-planner/config"
	"github.com/sundrop/budget-planner/engine"
	memstore "github.com/sundrop/budget-planner/engine/store"
	"github.com/sundrop/budget-planner/store/redisbus"
	"github.com/sundrop/budget-planner/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "budget.toml", "TOML config path")
	port := flag.String("port", "", "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.DBPath = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Change feed
	var feed engine.Feed = memstore.NewMemory()
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		bus, err := redisbus.New(ctx, cfg.Redis.Addr)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer bus.Close()
		feed = bus
		log.Printf("[Feed] Using Redis at %s", cfg.Redis.Addr)
	}

	saver := api.NewAutosaver(store, feed, cfg.Autosave.Delay)
	saver.Start()

	handler := api.NewHandler(store, feed, saver)
	handler.DefaultPlanID = cfg.Store.PlanID
	handler.Watch(cfg.Store.PlanID)

	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	server.RegisterOnShutdown(handler.Close)

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Server.Port)
		log.Printf("Plan %s, database %s", cfg.Store.PlanID, cfg.Store.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	handler.Close()
	saver.Stop()

	log.Println("Server stopped")
}
