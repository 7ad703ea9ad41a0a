// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"eventscape/internal/config"
	"eventscape/internal/database"
	"eventscape/internal/middleware"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
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
		Name:  "migrate",
		Usage: "Manage the Eventscape database schema",
		Description: `Apply, inspect or roll back schema changes.

SQL migrations are embedded in the binary and tracked in migration_logs.
DB_SCHEMA_MODE (hybrid|sql|auto) decides what "status" reports and what
the server applies on startup.`,
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply pending SQL migrations",
				Action: withDB(runUp),
			},
			{
				Name:   "auto",
				Usage:  "Run GORM AutoMigrate against the models",
				Action: withDB(runAuto),
			},
			{
				Name:   "status",
				Usage:  "Show schema mode and pending migrations",
				Action: withDB(runStatus),
			},
			{
				Name:      "down",
				Usage:     "Roll back one applied migration",
				ArgsUsage: "<version>",
				Action:    withDB(runDown),
			},
		},
	}
}

type dbAction func(ctx context.Context, cmd *cli.Command, cfg *config.Config, db *gorm.DB) error

// withDB loads configuration and connects without applying the schema, so
// every subcommand decides for itself what to run.
func withDB(fn dbAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		middleware.InitLogger(cfg.Env)

		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = database.Close() }()

		return fn(ctx, cmd, cfg, db)
	}
}

func runUp(ctx context.Context, _ *cli.Command, _ *config.Config, db *gorm.DB) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	middleware.Logger.Info("sql migrations applied")
	return nil
}

func runAuto(ctx context.Context, _ *cli.Command, cfg *config.Config, db *gorm.DB) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	middleware.Logger.Info("automigrations applied")
	return nil
}

func runStatus(ctx context.Context, _ *cli.Command, cfg *config.Config, db *gorm.DB) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	middleware.Logger.Info("schema status",
		slog.String("mode", status.Mode),
		slog.String("env", status.Environment),
		slog.Bool("run_sql", status.WillRunSQL),
		slog.Bool("run_auto", status.WillRunAutoMigrate),
		slog.Int("applied", len(status.AppliedVersions)),
		slog.Int("pending", len(status.PendingMigrations)),
	)
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending: %06d_%s\n", m.Version, m.Name)
	}
	return nil
}

func runDown(ctx context.Context, cmd *cli.Command, _ *config.Config, db *gorm.DB) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", cmd.Args().First(), err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	middleware.Logger.Info("rolled back migration", slog.Int("version", version))
	return nil
}
