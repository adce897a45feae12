package migrate

import (
	"context"
	"fmt"

	"github.com/floorline/backoffice/pkg/config"
	"github.com/floorline/backoffice/pkg/db"
	"github.com/floorline/backoffice/pkg/logger"
)

// MaybeRunDev applies pending migrations on startup in dev when FLOORLINE_AUTO_MIGRATE
// is set. Local sqlite databases are skipped; their schema is not goose-managed.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.DB.UsesSQLite() {
		logg.Warn(ctx, "skipping goose auto-migrate for sqlite")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
