// Command server is the entry point for the Eventscape API.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventscape/internal/bootstrap"
	"eventscape/internal/config"
	"eventscape/internal/middleware"
	"eventscape/internal/notifications"
	"eventscape/internal/observability"
	"eventscape/internal/server"

	"golang.org/x/sync/errgroup"
)

// @title Eventscape API
// @version 1.0
// @description Event discovery: listings, geographic search, registrations and bookmarks.

// @contact.name API Support
// @contact.email support@eventscape.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env)

	if err := run(cfg); err != nil {
		middleware.Logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "eventscape-api",
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			middleware.Logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedCategories: true})
	if err != nil {
		return err
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	// Delivery audit for pushed notifications; a no-op without Redis.
	if rdb != nil {
		notifier := notifications.NewNotifier(rdb)
		g.Go(func() error {
			return notifier.StartPatternSubscriber(gctx, func(channel, payload string) {
				middleware.Logger.Debug("notification delivered",
					slog.String("channel", channel),
					slog.Int("bytes", len(payload)),
				)
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		middleware.Logger.Info("Shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
