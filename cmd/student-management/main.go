// main is the entry point of the student management service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured storage backend (optionally behind Redis)
//  4. Build the student service and register the HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage, and
//     exit non-zero if either the server or the shutdown failed
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-management --config=config/local.yaml
//
// or
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-management
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-management/internal/config"
	"github.com/aanand-mishra/student-management/internal/http/handlers/student"
	"github.com/aanand-mishra/student-management/internal/http/middleware"
	"github.com/aanand-mishra/student-management/internal/service"
	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/storage/cache"
	"github.com/aanand-mishra/student-management/internal/storage/memory"
	"github.com/aanand-mishra/student-management/internal/storage/postgres"
	"github.com/aanand-mishra/student-management/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	// Handlers log through the package-level slog functions.
	slog.SetDefault(log)

	log.Info("starting student-management",
		slog.String("env", cfg.Env),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	ctx := context.Background()

	store, closeStore, err := newStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised", slog.Bool("cache", cfg.Redis.Enabled()))

	svc := service.NewStudentService(store)

	router := http.NewServeMux()
	student.Register(router, svc)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      middleware.RequestID(middleware.Logger(log)(router)),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	err = serve(server, done, cfg.HTTPServer.ShutdownTimeout)
	closeStore()
	if err != nil {
		log.Error("server stopped with an error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// serve runs server until it fails or stop fires, then shuts it down
// within timeout. It returns the listen error or the shutdown error; nil
// means a clean stop.
func serve(server *http.Server, stop <-chan os.Signal, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("address", server.Addr))

		// ErrServerClosed is the normal result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	slog.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newStorage opens the backend selected by cfg.StorageDriver and wraps it
// in the Redis cache when one is configured. The returned func releases
// every resource that was opened.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	var (
		store   storage.Storage
		closers []func()
	)

	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		store = db
		closers = append(closers, func() { db.Close() })
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store = db
		closers = append(closers, db.Close)
	case config.DriverMemory:
		store = memory.New()
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		store = cache.New(store, client, cfg.Redis.TTL)
	}

	return store, closeAll, nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev:     human-readable text at DEBUG
// staging: JSON at DEBUG
// prod:    JSON at INFO
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
