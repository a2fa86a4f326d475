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
	"golang.org/x/sync/errgroup"

	"github.com/halvard/skald/internal/api"
	"github.com/halvard/skald/internal/draftstore"
	"github.com/halvard/skald/internal/importer"
	"github.com/halvard/skald/internal/mcpserver"
	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/pageservice"
	"github.com/halvard/skald/internal/remote"
	"github.com/halvard/skald/internal/sse"
	"github.com/halvard/skald/internal/storage"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("owner", cfg.Account.Owner),
		slog.String("drafts_path", cfg.Drafts.Path),
		slog.String("ledger_url", cfg.Ledger.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, drafts, err := buildService(app, logger)
	if err != nil {
		return err
	}
	defer drafts.Close()

	// SSE broker, fed by service events.
	broker := sse.NewBroker(cfg.Editor.EventThrottle())
	defer broker.Close()
	svc.SetNotify(func(kind, pageID string, vis models.Visibility) {
		broker.PublishPageEvent(kind, pageID, string(vis))
	})

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the drop-box importer when configured.
	if cfg.Importer.Enabled() {
		if err := os.MkdirAll(cfg.Importer.Path, 0o755); err != nil {
			return fmt.Errorf("create importer dir: %w", err)
		}
		box, err := storage.NewFS(cfg.Importer.Path)
		if err != nil {
			return fmt.Errorf("init importer storage: %w", err)
		}
		g.Go(func() error {
			if err := importer.Watch(gCtx, svc, box, cfg.Importer.Path, logger); err != nil {
				logger.Error("importer failed", slog.String("error", err.Error()))
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

// RunMCP starts the MCP server on stdio with the given options. Logs go to
// stderr so stdout stays clean for the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, drafts, err := buildService(app, logger)
	if err != nil {
		return err
	}
	defer drafts.Close()

	logger.Info("MCP server starting on stdio", slog.String("owner", app.config.Account.Owner))
	return mcpserver.New(svc).ServeStdio()
}

// buildService opens the draft store and wires the page service against the
// configured (or injected) ledger source.
func buildService(app *application, logger *slog.Logger) (*pageservice.Service, *draftstore.Store, error) {
	cfg := app.config

	drafts, err := draftstore.Open(cfg.Drafts.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init draft store: %w", err)
	}

	src := app.source
	if src == nil {
		src = remote.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.Token, cfg.Ledger.Timeout)
	}

	return pageservice.NewService(drafts, src, cfg.Account.Owner, logger), drafts, nil
}
