// Command seed fills the database with development data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventscape/internal/config"
	"eventscape/internal/database"
	"eventscape/internal/middleware"
	"eventscape/internal/seed"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the database with a demo account, categories and fake events",
		Description: `Creates the seed account (seed@example.com / password123), the built-in
category catalogue, fake users and events scattered around a centre point,
and random registrations, bookmarks and notifications.`,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 20, Usage: "number of fake users"},
			&cli.IntFlag{Name: "events", Value: 60, Usage: "number of fake events"},
			&cli.Float64Flag{Name: "lat", Value: 40.7128, Usage: "centre latitude"},
			&cli.Float64Flag{Name: "lng", Value: -74.0060, Usage: "centre longitude"},
			&cli.Float64Flag{Name: "radius", Value: 25, Usage: "scatter radius in km"},
			&cli.IntFlag{Name: "days", Value: 30, Usage: "events start within this many days"},
			&cli.BoolFlag{Name: "clean", Usage: "delete existing data first"},
			&cli.IntFlag{Name: "random-seed", Usage: "fixed seed for reproducible data (0 = time based)"},
		},
		Action: runSeed,
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.InitLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	summary, err := seed.Seed(ctx, db, seed.Options{
		NumUsers:    int(cmd.Int("users")),
		NumEvents:   int(cmd.Int("events")),
		CenterLat:   cmd.Float64("lat"),
		CenterLng:   cmd.Float64("lng"),
		RadiusKm:    cmd.Float64("radius"),
		MaxDays:     int(cmd.Int("days")),
		ShouldClean: cmd.Bool("clean"),
		RandomSeed:  int64(cmd.Int("random-seed")),
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	middleware.Logger.Info("seed summary",
		slog.Int("users", summary.Users),
		slog.Int("categories", summary.Categories),
		slog.Int("events", summary.Events),
		slog.Int("registrations", summary.Registrations),
		slog.Int("bookmarks", summary.Bookmarks),
		slog.Int("notifications", summary.Notifications),
	)
	return nil
}
