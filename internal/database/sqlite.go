package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// NewSQLite opens (creating if needed) the SQLite database at cfg.Path.
//
// Foreign keys are requested in the DSN so every pooled connection gets them,
// and verified afterwards because SQLite silently ignores unknown pragmas.
func NewSQLite(cfg config.DatabaseConfig, logger *zerolog.Logger) (*Database, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One writer; concurrent requests queue on the pool instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	if err := verifyForeignKeys(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().Str("driver", config.DriverSQLite).Str("path", cfg.Path).Msg("connected to the database")

	return &Database{
		Driver:  config.DriverSQLite,
		Dialect: DialectSQLite,
		SQL:     db,
		log:     logger,
	}, nil
}

func sqliteDSN(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + pragmas
		}
		return path + "?" + pragmas
	}
	return "file:" + path + "?" + pragmas
}

func verifyForeignKeys(ctx context.Context, db *sql.DB) error {
	var fkEnabled int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to verify foreign keys: %w", err)
	}
	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys not enabled (got: %d, expected: 1)", fkEnabled)
	}
	return nil
}

func applySQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("applying sqlite schema: %w", err)
	}
	return nil
}
