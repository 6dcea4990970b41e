// Package database contains the logic for establishing
// connections to the backing store.
//
// It handles:
//   - building a DSN from config
//   - creating a pgx connection pool (pgxpool) for PostgreSQL
//   - opening a modernc SQLite database for local runs and tests
//   - wiring query tracing/logging (pgx tracelog)
//   - optional New Relic instrumentation (nrpgx5)
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/adboard/internal/config"
	loggerConfig "github.com/deppfellow/adboard/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database wraps whichever connection pool the configured driver uses.
//
// Exactly one of Pool (postgres) and SQL (sqlite) is set.
type Database struct {
	Driver  string
	Dialect Dialect
	Pool    *pgxpool.Pool
	SQL     *sql.DB

	// SlowQueryThreshold, when positive, logs statements at warn level once
	// they take at least this long. Zero disables it.
	SlowQueryThreshold time.Duration

	log *zerolog.Logger
}

// multiTracer allows chaining multiple tracers.
//
// pgx supports a single Tracer in ConnConfig, so this adapter runs the
// New Relic tracer and the local tracelog.TraceLog side by side.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is the number of seconds to wait for the startup ping.
const DatabasePingTimeout = 10

// New opens the store selected by cfg.Database.Driver and pings it.
//
// loggerService may be nil; New Relic instrumentation is attached only when
// it carries an application.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	var (
		db  *Database
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err = NewSQLite(cfg.Database, logger)
	case config.DriverPostgres, "":
		db, err = newPostgres(cfg, logger, loggerService)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Observability != nil {
		db.SlowQueryThreshold = cfg.Observability.Logging.SlowQueryThreshold
	}
	return db, nil
}

// PostgresDSN builds a postgres:// URL from the database config.
func PostgresDSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	// "pa:ss@word" would otherwise break the URL structure.
	encodedPassword := url.QueryEscape(cfg.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		encodedPassword,
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

func newPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	applyPoolSettings(pgxPoolConfig, cfg.Database)

	if loggerService != nil && loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL query logging is noisy, so it is only enabled in local env.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Driver:  config.DriverPostgres,
		Dialect: DialectPostgres,
		Pool:    pool,
		log:     logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", database.Driver).Msg("connected to the database")

	return database, nil
}

func applyPoolSettings(poolConfig *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(min(cfg.MaxIdleConns, int(poolConfig.MaxConns)))
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second
	}
}

// Querier returns the single-row query surface used by the repositories.
func (db *Database) Querier() Querier {
	var q Querier = sqlQuerier{db: db.SQL}
	if db.Pool != nil {
		q = pgxQuerier{pool: db.Pool}
	}

	if db.SlowQueryThreshold > 0 {
		q = slowQuerier{next: q, threshold: db.SlowQueryThreshold, log: db.log}
	}
	return q
}

// Ping checks the store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	return db.SQL.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *Database) Close() error {
	db.log.Info().Str("driver", db.Driver).Msg("closing database connection pool")
	if db.Pool != nil {
		db.Pool.Close()
		return nil
	}
	return db.SQL.Close()
}
