package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

// No endpoint creates categories, so the fixed set ships with the schema.
//
//go:embed 20261015002_seed_categories.sql
var seedCategoriesSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, seedCategoriesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id BETWEEN 1 AND 6`)
			return err
		},
	)
}
