// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yuhungliao/mission-control/internal/api"
	"github.com/yuhungliao/mission-control/internal/index"
	"github.com/yuhungliao/mission-control/internal/mcpserver"
	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/session"
	"github.com/yuhungliao/mission-control/internal/storage"
)

// components holds what every command shares.
type components struct {
	cfg      *Config
	logger   *slog.Logger
	store    storage.Provider
	db       *index.DB
	redactor *redact.Redactor
	svc      *memoryservice.Service
}

func (rt *components) Close() error {
	return rt.db.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup builds the logger, workspace provider, memory store, redactor, and
// service from the configuration.
func setup(app *application) (*components, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Bool("trust_proxy", cfg.App.HTTP.TrustProxy),
		slog.String("workspace_path", cfg.Workspace.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("rate_limit_backend", cfg.RateLimit.Backend),
		slog.Bool("watch", cfg.Sync.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage.
	store, err := storage.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	redactor := redact.New()
	for _, extra := range cfg.Sync.ExtraRedactions {
		if err := redactor.AddPattern(extra.Name, extra.Pattern); err != nil {
			return nil, fmt.Errorf("init redactor: %w", err)
		}
	}

	// Initialize SQLite memory store.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	return &components{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		db:       db,
		redactor: redactor,
		svc:      memoryservice.NewService(store, db, redactor, logger),
	}, nil
}

// newAttemptStore selects the failed-login store for the configured backend.
// The returned close function releases any connection.
func newAttemptStore(ctx context.Context, cfg RateLimitConfig) (session.AttemptStore, func() error, error) {
	if cfg.Backend != RateLimitBackendRedis {
		store, err := session.NewMemoryStore(cfg.Capacity)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := session.AttemptWindow + session.LockoutDuration
	return session.NewRedisStore(client, cfg.Redis.Prefix, ttl), client.Close, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := setup(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	logger := rt.logger

	signer, err := session.NewSigner(cfg.Auth.SessionSecret)
	if err != nil {
		return fmt.Errorf("init session signer: %w", err)
	}
	attempts, closeAttempts, err := newAttemptStore(ctx, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("init attempt store: %w", err)
	}
	defer closeAttempts() //nolint:errcheck
	gate := session.NewGate(cfg.Auth.Password, signer, attempts, session.WithLogger(logger))
	if !gate.Configured() {
		logger.Warn("auth.password is empty; every login will fail with Server misconfigured")
	}
	if cfg.Auth.SyncToken == "" {
		logger.Warn("auth.sync_token is empty; GET /api/sync rejects every request")
	}

	// Populate an empty store from the workspace.
	if _, err := rt.svc.Bootstrap(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(rt.svc, gate, cfg.Auth.SyncToken)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(api.ClientIP(cfg.App.HTTP.TrustProxy))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.db.Count(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Everything else goes through the session gate.
	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Optional workspace watcher.
	if cfg.Sync.Watch {
		g.Go(func() error {
			return index.Watch(gCtx, rt.db, rt.store, rt.redactor, logger, nil)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Sync runs the sync pipeline once and returns its report.
func Sync(ctx context.Context, opts ...Option) (index.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return index.Report{}, err
	}
	rt, err := setup(app)
	if err != nil {
		return index.Report{}, err
	}
	defer rt.Close()

	return rt.svc.Sync(ctx)
}

// ServeMCP serves the memory tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := setup(app)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.svc.Bootstrap(ctx); err != nil {
		rt.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}
