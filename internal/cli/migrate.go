package cli

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-service/internal/config"
	"trivia-service/internal/infra/postgres/migrations"
	rediscache "trivia-service/internal/infra/redis"
	"trivia-service/internal/logger"
)

var errNoPostgres = errors.New("postgres url not configured")

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logging, cfg.Env, cmd.OutOrStdout())
			if err := runMigrations(cmd.Context(), cfg, log); err != nil {
				return err
			}
			invalidateCategoryCache(cmd.Context(), cfg, log)
			return nil
		},
	}
}

// invalidateCategoryCache drops the cached category list so running servers reload it after a migration.
// Failures are logged; a stale list still expires with its TTL.
func invalidateCategoryCache(ctx context.Context, cfg config.Config, log zerolog.Logger) {
	if cfg.Redis.Addr == "" {
		return
	}
	client := newRedisClient(cfg)
	defer client.Close()

	if err := rediscache.NewCategoryCache(client, nil, 0).Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate category cache")
		return
	}
	log.Info().Msg("category cache invalidated")
}

func runMigrations(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrations applied")
	return nil
}
