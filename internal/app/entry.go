// Package app wires configuration, storage, export and the HTTP API into a
// running resume builder service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/sync/errgroup"

	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/draft"
	"resume-builder/internal/export"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/api"
	"resume-builder/pkg/infrastructure"
)

// Run starts the application with the given options.
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
		slog.String("drafts_backend", cfg.Drafts.Backend),
		slog.String("api_base_url", cfg.API.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openDrafts(ctx, cfg.Drafts, logger)
	if err != nil {
		return err
	}
	defer store.close()

	renderer := infrastructure.NewChromedpRenderer(cfg.Export.ChromePath, cfg.Export.Timeout)
	exporter := export.New(renderer,
		export.WithPrinter(renderer),
		export.WithLogger(logger),
		export.WithTimeout(cfg.Export.Timeout),
		export.WithScale(cfg.Export.Scale),
		export.WithArchiveDir(cfg.Export.ArchiveDir),
		export.WithOptimize(cfg.Export.Optimize),
	)

	sessions := usecase.NewSessions(newBuilderFactory(cfg, store.provider, exporter, logger), cfg.Session.TTL, logger)

	server := fiber.New(fiber.Config{
		AppName:               "resume-builder",
		DisableStartupMessage: true,
		ErrorHandler:          httpadapter.ErrorHandler(logger),
	})
	server.Use(requestid.New())
	server.Use(recover.New())
	server.Use(httpadapter.AccessLog(logger))
	httpadapter.NewHandler(sessions, cfg.Session.CookieName, logger).Routes(server)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload live sessions when another process edits their drafts.
	g.Go(func() error {
		return store.watch(gCtx, func(ns string, key draft.Key) {
			logger.Debug("draft slot changed", slog.String("session", ns), slog.String("slot", string(key)))
			sessions.Rehydrate(ns)
		})
	})

	g.Go(func() error {
		return sessions.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := server.Listen(cfg.App.HTTP.Address()); err != nil {
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
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newBuilderFactory opens one builder per session: a document over the
// session's draft namespace and an API client with its own cookie jar.
func newBuilderFactory(cfg *Config, provider draft.Provider, exporter usecase.Exporter, logger *slog.Logger) usecase.BuilderFactory {
	return func(id string) (*usecase.Builder, error) {
		sessionLogger := logger.With(slog.String("session", id))
		store := draft.NewStore(provider.Backend(id), sessionLogger)
		doc := usecase.NewDocument(store, usecase.DefaultIDs, sessionLogger)

		client, err := api.NewClient(api.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
			Retries: cfg.API.Retries,
			Logger:  sessionLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("api client: %w", err)
		}

		return usecase.NewBuilder(doc, usecase.BuilderConfig{
			Exporter:   exporter,
			Resumes:    client.Resumes(),
			Auth:       client.Auth(),
			PublicBase: cfg.App.PublicBaseURL,
			Logger:     sessionLogger,
		}), nil
	}
}
