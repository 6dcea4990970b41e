package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	tern "github.com/jackc/tern/v2/migrate"
)

// Embed all SQL files under migrations/ at compile time, so the binary
// carries its own schema.
//
//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date.
//
// PostgreSQL runs the embedded tern migrations on a connection borrowed from
// the pool; SQLite applies its idempotent CREATE TABLE IF NOT EXISTS schema.
func (db *Database) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		if err := applySQLiteSchema(ctx, db.SQL); err != nil {
			return err
		}
		db.log.Info().Str("driver", db.Driver).Msg("database schema applied")
		return nil
	}

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection for migrations: %w", err)
	}
	defer conn.Release()

	// The migration version lives in the schema_version table.
	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database schema: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		db.log.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		db.log.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
