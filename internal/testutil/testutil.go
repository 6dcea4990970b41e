// Package testutil builds fully wired servers for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/deppfellow/adboard/internal/database"
	"github.com/deppfellow/adboard/internal/handler"
	"github.com/deppfellow/adboard/internal/repository"
	"github.com/deppfellow/adboard/internal/router"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Config returns a valid configuration for driver with logging kept quiet.
func Config(driver string) *config.Config {
	obs := config.DefaultObservabilityConfig()
	obs.ServiceName = config.ServiceName
	obs.Environment = "test"
	obs.Logging.Level = "error"
	obs.HealthChecks.Timeout = 2 * time.Second

	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        5,
			WriteTimeout:       5,
			IdleTimeout:        5,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			Driver: driver,
		},
		Observability: obs,
	}
}

// NewSQLiteDatabase opens a migrated SQLite database in a temp dir.
func NewSQLiteDatabase(t testing.TB) *database.Database {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewSQLite(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "adboard.db"),
	}, &logger)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// NewServer wires the full stack over db and returns the server and router.
// The database is closed when the test ends.
func NewServer(t testing.TB, cfg *config.Config, db *database.Database) (*server.Server, *echo.Echo) {
	t.Helper()

	logger := zerolog.Nop()
	srv := server.NewWithDatabase(cfg, &logger, nil, db)
	t.Cleanup(func() { _ = db.Close() })

	repos := repository.NewRepositories(srv)
	services := service.NewServices(repos)
	handlers := handler.NewHandlers(srv, services)

	return srv, router.NewRouter(srv, handlers)
}

// NewSQLiteServer is NewServer over a fresh SQLite database.
func NewSQLiteServer(t testing.TB) (*server.Server, *echo.Echo) {
	t.Helper()

	cfg := Config(config.DriverSQLite)
	db := NewSQLiteDatabase(t)
	cfg.Database.Path = "test.db"

	return NewServer(t, cfg, db)
}
