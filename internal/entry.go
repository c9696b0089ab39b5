// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/giftcert/internal/api"
	"github.com/starford/giftcert/internal/mcpserver"
	"github.com/starford/giftcert/internal/metrics"
	"github.com/starford/giftcert/internal/service"
	"github.com/starford/giftcert/internal/sse"
	"github.com/starford/giftcert/internal/stats"
	"github.com/starford/giftcert/internal/store"
	pkgconfig "github.com/starford/giftcert/pkg/config"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logLevel: new(slog.LevelVar)}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	app.logLevel.Set(app.config.App.LogLevel)
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// reloadLogLevel re-reads the config file and applies its log level.
// Other settings need a restart.
func (a *application) reloadLogLevel(logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(a.configPath, cfg); err != nil {
		logger.Warn("config reload failed", slog.String("error", err.Error()))
		return
	}
	if cfg.App.LogLevel == a.logLevel.Level() {
		return
	}
	a.logLevel.Set(cfg.App.LogLevel)
	logger.Info("log level changed", slog.String("log_level", cfg.App.LogLevel.String()))
}

type backend struct {
	db    *store.DB
	stats *stats.Aggregator
	deps  service.Deps
}

// openBackend opens the database and assembles the repositories.
func openBackend(cfg *Config) (*backend, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	tags := store.NewTagRepo(db)
	certs := store.NewCertificateRepo(db, tags)
	users := store.NewUserRepo(db)
	orders := store.NewOrderRepo(db)

	agg, err := stats.New(certs, tags, users, orders)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init stats: %w", err)
	}

	return &backend{
		db:    db,
		stats: agg,
		deps: service.Deps{
			Certificates: certs,
			Tags:         tags,
			Users:        users,
			Orders:       orders,
			Stats:        agg,
		},
	}, nil
}

// invalidatingPublisher drops cached totals before forwarding a change event.
type invalidatingPublisher struct {
	next   service.EventPublisher
	totals *stats.Cached
}

func (p invalidatingPublisher) PublishEntityEvent(kind, entity string, id int64) {
	p.totals.Invalidate()
	p.next.PublishEntityEvent(kind, entity, id)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("metrics_enabled", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.db.Close()

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	totals := stats.NewCached(be.stats, cfg.Metrics.TotalsTTL)
	if err := m.RegisterTotals(totals); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.StatsThrottle)
	defer broker.Close()

	deps := be.deps
	deps.Events = invalidatingPublisher{next: broker, totals: totals}
	deps.Observer = m
	svc := service.New(deps)

	apiRouter := api.NewRouter(svc, api.RouterConfig{
		BasePath: "/api",
		AuthMode: cfg.Auth.Mode,
		Token:    cfg.Auth.Token,
		Pages: api.PageConfig{
			DefaultSize: cfg.Pagination.DefaultSize,
			MaxSize:     cfg.Pagination.MaxSize,
		},
		Events: broker,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-Match", "X-Request-ID"},
		ExposedHeaders: []string{"ETag", "Location", "X-Request-ID"},
		MaxAge:         cfg.CORS.MaxAge,
	}))
	if cfg.Metrics.Enabled {
		r.Use(m.Middleware)
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := be.db.Ping(req.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, m.Handler())
	}

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		g.Go(func() error {
			err := pkgconfig.Watch(gCtx, app.configPath, func() { app.reloadLogLevel(logger) })
			if err != nil {
				// Hot reload is optional; keep serving.
				logger.Warn("config watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the config watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the read-only MCP tools over stdio. Logs go to stderr
// because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger(os.Stderr)

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.db.Close()

	svc := service.New(be.deps)
	srv := mcpserver.New(svc, cfg.Pagination.DefaultSize, cfg.Pagination.MaxSize)

	logger.Info("MCP server starting on stdio", slog.String("sqlite_path", cfg.SQLite.Path))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
