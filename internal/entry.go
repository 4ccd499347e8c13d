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
	"golang.org/x/sync/errgroup"

	"github.com/starford/tagvault/internal/api"
	"github.com/starford/tagvault/internal/index"
	"github.com/starford/tagvault/internal/mcpserver"
	"github.com/starford/tagvault/internal/sse"
	"github.com/starford/tagvault/internal/tagservice"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger as the default.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// watchVault refreshes the vault whenever its files change and reports each
// changed note to onNote. It returns when ctx is cancelled.
func watchVault(ctx context.Context, cfg *Config, vault *Vault, logger *slog.Logger, onNote func(index.Change)) {
	if !cfg.Watch.Enabled {
		return
	}
	err := index.Watch(ctx, vault.Root(), cfg.Watch.Debounce, logger, func(ctx context.Context, changes []index.Change) {
		if err := vault.Refresh(ctx); err != nil {
			logger.Warn("refresh after change failed", slog.String("error", err.Error()))
		}
		if onNote == nil {
			return
		}
		for _, c := range changes {
			onNote(c)
		}
	})
	if err != nil {
		logger.Error("watcher failed", slog.String("error", err.Error()))
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	out := app.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := newLogger(out, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.Bool("search_enabled", cfg.Search.Enabled),
		slog.Bool("watch_enabled", cfg.Watch.Enabled),
		slog.Bool("history_enabled", cfg.History.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(cfg.Watch.EventThrottle)
	defer broker.Close()

	vault, err := OpenVault(cfg, logger, tagservice.OnRebuild(func(ix *index.TagIndex) {
		broker.PublishIndexStats(sse.IndexStats{Tags: ix.Len(), Documents: len(ix.Documents())})
	}))
	if err != nil {
		return err
	}
	defer vault.Close()

	// Build the initial index.
	if err := vault.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes (and the SSE endpoint) under /api.
	r.Mount("/api", api.NewRouter(vault, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		watchVault(gCtx, cfg, vault, logger, func(c index.Change) {
			broker.PublishNoteEvent(c.Kind, c.Path)
		})
		return nil
	})

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

		// Stop the watcher as well.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the HTTP server has stopped.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout until stdin is closed.
// Logs go to stderr unless WithLogOutput says otherwise, since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	out := app.logOutput
	if out == nil {
		out = os.Stderr
	}
	logger := newLogger(out, cfg.App.LogLevel)

	vault, err := OpenVault(cfg, logger)
	if err != nil {
		return err
	}
	defer vault.Close()

	if err := vault.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		watchVault(gCtx, cfg, vault, logger, nil)
		return nil
	})

	logger.Info("MCP server starting", slog.String("vault_path", vault.Root()))
	err = mcpserver.New(vault, app.version).ServeStdio()
	cancel()
	_ = g.Wait()
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
