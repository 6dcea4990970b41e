package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Row is the result of a single-row query; both pgx.Row and *sql.Row satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// Querier issues single statements against the pool.
//
// The pool acquires a connection for the statement and releases it once the
// row has been scanned, on every exit path.
type Querier interface {
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type pgxQuerier struct {
	pool *pgxpool.Pool
}

func (q pgxQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return q.pool.QueryRow(ctx, query, args...)
}

type sqlQuerier struct {
	db *sql.DB
}

func (q sqlQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return q.db.QueryRowContext(ctx, query, args...)
}

// slowQuerier logs statements whose execution and scan take longer than threshold.
type slowQuerier struct {
	next      Querier
	threshold time.Duration
	log       *zerolog.Logger
}

func (q slowQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &timedRow{
		row:     q.next.QueryRow(ctx, query, args...),
		start:   time.Now(),
		query:   query,
		querier: q,
	}
}

// timedRow measures from QueryRow until Scan returns; both drivers only
// release the connection once the row is scanned.
type timedRow struct {
	row     Row
	start   time.Time
	query   string
	querier slowQuerier
}

func (r *timedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)

	if elapsed := time.Since(r.start); elapsed >= r.querier.threshold {
		r.querier.log.Warn().
			Dur("duration", elapsed).
			Dur("threshold", r.querier.threshold).
			Str("sql", r.query).
			Msg("slow query")
	}
	return err
}

// Dialect captures the SQL differences between the supported drivers.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == DialectSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

func (d Dialect) String() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "postgres"
}

// IsNoRows reports whether err means the query matched nothing, for either driver.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// timestampLayouts are tried in order when a driver hands back text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// Timestamp scans a timestamp column regardless of how the driver encodes it.
//
// pgx yields time.Time; SQLite may yield time.Time or text depending on
// the declared column type of the expression.
type Timestamp struct {
	Time time.Time
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
