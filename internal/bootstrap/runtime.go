// Package bootstrap wires process-level runtime dependencies shared by the
// server and the operational commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"eventscape/internal/cache"
	"eventscape/internal/config"
	"eventscape/internal/database"
	"eventscape/internal/middleware"
	"eventscape/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCategories installs the built-in category catalogue after connecting.
	SeedCategories bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in
// categories. Redis may come back nil; callers must degrade without it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedCategories {
		categories, err := seed.Categories(db.WithContext(ctx))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in categories: %w", err)
		}
		middleware.Logger.Info("built-in categories ready", slog.Int("count", len(categories)))
	}

	return db, r, nil
}
