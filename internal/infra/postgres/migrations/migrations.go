// Package migrations holds the trivia schema. Migration names come from the
// registering file name, so each step lives in its own numbered file.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
