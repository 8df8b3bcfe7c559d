// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bissquit/status-snapshot/internal/config"
	"github.com/bissquit/status-snapshot/internal/pkg/ctxlog"
	"github.com/bissquit/status-snapshot/internal/pkg/httputil"
	"github.com/bissquit/status-snapshot/internal/pkg/metrics"
	"github.com/bissquit/status-snapshot/internal/regional"
	"github.com/bissquit/status-snapshot/internal/snapshot"
	"github.com/bissquit/status-snapshot/internal/statuspage"
	"github.com/bissquit/status-snapshot/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// App represents the application instance.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	collector *snapshot.Collector
	writer    *snapshot.Writer
	server    *http.Server
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := initLogger(cfg.Log)

	pages := statuspage.NewClient(statuspage.Config{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
	})
	regions := regional.NewClient(regional.Config{
		URL:       cfg.Regional.URL,
		UserAgent: cfg.Regional.UserAgent,
		Timeout:   cfg.Regional.Timeout,
	})

	limit := rate.Inf
	if cfg.Fetch.RPS > 0 {
		limit = rate.Limit(cfg.Fetch.RPS)
	}

	app := &App{
		config:    cfg,
		logger:    logger,
		collector: snapshot.NewCollector(cfg.Providers, pages, regions, rate.NewLimiter(limit, 1)),
		writer:    snapshot.NewWriter(cfg.Output.Path),
	}

	if cfg.Server.Addr != "" {
		app.server = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           app.setupRouter(),
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}

	return app, nil
}

// Run performs one snapshot pass. When a server address is configured it
// then serves the written snapshot until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.RunOnce(ctx); err != nil {
		return err
	}

	if a.server == nil {
		return nil
	}

	return a.serve(ctx)
}

// RunOnce collects every status, writes the snapshot and exports metrics.
func (a *App) RunOnce(ctx context.Context) error {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_id", uuid.New().String())
	logger := ctxlog.FromContext(ctx)

	start := time.Now()
	logger.Info("collecting statuses",
		"providers", len(a.config.Providers),
		"output", a.writer.Path(),
	)

	doc, err := a.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}

	if err := a.writer.Write(doc); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	metrics.RecordWrite(time.Now())

	if a.config.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
			logger.Warn("failed to export metrics", "path", a.config.Metrics.Textfile, "error", err)
		}
	}

	logger.Info("snapshot written",
		"path", a.writer.Path(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

func (a *App) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting snapshot server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the snapshot server.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}

	a.logger.Info("shutting down snapshot server")
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for testing. It is nil when no server
// address is configured.
func (a *App) Router() http.Handler {
	if a.server == nil {
		return nil
	}
	return a.server.Handler
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)
	r.Use(httputil.CORSMiddleware(a.config.Server.Origins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.healthzHandler)
	r.Get("/version", a.versionHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", a.snapshotHandler)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func (a *App) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(a.writer.Path())
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to read snapshot", "path", a.writer.Path(), "error", err)
		httputil.Error(w, http.StatusServiceUnavailable, "snapshot not available")
		return
	}

	httputil.RawJSON(w, http.StatusOK, data)
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
