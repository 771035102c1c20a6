/*
main.go - Application entry point

PURPOSE:
  Starts the upgrade advisor HTTP server: loads configuration, opens the
  configured store, wires advisor, importer, metrics and scheduler, and shuts
  everything down cleanly on a signal.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, column profiles)
  2. Apply command-line overrides
  3. Open the store (sqlite, mongo or memory)
  4. Build advisor, importer, handler and router
  5. Start the gauge scheduler and the HTTP server

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides UA_PORT)
  -db      SQLite database path (overrides UA_DB_PATH)
           Use ":memory:" for an in-memory database
  -env     Path of an optional .env file (default: .env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the store

EXAMPLES:
  ./server -db="./data/advisor.db"
  UA_DB_DRIVER=mongo UA_MONGO_URI=mongodb://localhost:27017 ./server
  UA_DB_DRIVER=memory ./server -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/upgrade-advisor/api"
	"github.com/warp/upgrade-advisor/config"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/generic/store"
	"github.com/warp/upgrade-advisor/importer"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/warp/upgrade-advisor/store/mongo"
	"github.com/warp/upgrade-advisor/store/sqlite"
	"github.com/warp/upgrade-advisor/upgrade"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides UA_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides UA_DB_PATH)")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.Driver, "error", err)
	}
	defer closeStore()

	m := metrics.New("upgrade_advisor")

	advisor := upgrade.NewAdvisor(st, log, m)
	advisor.TrendWindow = cfg.TrendWindowDays

	handler := api.NewHandler(advisor, importer.New(cfg.Profiles, log, m), log, m)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	scheduler := api.NewScheduler(advisor, m, log)
	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr, "driver", cfg.Driver, "trend_window_days", cfg.TrendWindowDays)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}

// openStore returns the configured store and the function that releases it.
func openStore(cfg *config.Config) (generic.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverMongo:
		s, err := mongo.New(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverMemory:
		return store.NewMemory(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}
