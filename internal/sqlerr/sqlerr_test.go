package sqlerr

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, ForeignKeyViolation, MapCode("23503"))
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, Other, MapCode("42P01"))
}

func TestConvertPgError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "users_name_key"`,
		TableName:      "users",
		ConstraintName: "users_name_key",
	}

	wrapped := errors.Wrap(pgErr, "create user")
	assert.Equal(t, UniqueViolation, ErrCode(wrapped))

	var sqlErr *Error
	require.True(t, errors.As(Normalize(wrapped), &sqlErr))
	assert.Equal(t, "23505", sqlErr.DatabaseCode)
	assert.Equal(t, SeverityError, sqlErr.Severity)
	assert.Equal(t, "name", extractColumnForUniqueViolation(sqlErr))
	assert.True(t, errors.Is(sqlErr, pgErr), "driver error stays reachable")
}

func TestHandleError_Postgres(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      *pgconn.PgError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "unique",
			pgErr:      &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_name_key"},
			wantStatus: http.StatusConflict,
			wantCode:   "USER_ALREADY_EXISTS",
			wantMsg:    "A User with this Name already exists",
		},
		{
			name:       "foreign key",
			pgErr:      &pgconn.PgError{Code: "23503", TableName: "advertisements", ColumnName: "owner_id"},
			wantStatus: http.StatusNotFound,
			wantCode:   "ADVERTISEMENT_NOT_FOUND",
			wantMsg:    "The referenced Owner does not exist",
		},
		{
			name:       "not null",
			pgErr:      &pgconn.PgError{Code: "23502", TableName: "advertisements", ColumnName: "title"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "ADVERTISEMENT_REQUIRED",
			wantMsg:    "The Title is required",
		},
		{
			name:       "check",
			pgErr:      &pgconn.PgError{Code: "23514", TableName: "users", ColumnName: "rating"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "USER_INVALID",
			wantMsg:    "The Rating value does not meet required conditions",
		},
		{
			name:       "unknown",
			pgErr:      &pgconn.PgError{Code: "42P01", Message: "relation does not exist"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.True(t, errors.As(HandleError(tt.pgErr), &httpErr))

			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestHandleError_Passthrough(t *testing.T) {
	original := errs.NewNotFoundError("no such user", nil)
	assert.Same(t, original, HandleError(original))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(HandleError(fmt.Errorf("get: %w", sql.ErrNoRows)), &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	require.True(t, errors.As(HandleError(pgx.ErrNoRows), &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	require.True(t, errors.As(HandleError(errors.New("boom")), &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestNormalize_Unrecognized(t *testing.T) {
	assert.NoError(t, Normalize(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, Normalize(plain))
	assert.Equal(t, Other, ErrCode(plain))
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/sqlerr.db?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			rating INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 100)
		);
		CREATE TABLE advertisements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE
		);
		INSERT INTO users (name) VALUES ('alice');
	`)
	require.NoError(t, err)
	return db
}

func TestConvertSQLiteError(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		query     string
		wantCode  Code
		wantTable string
		wantCol   string
	}{
		{
			name:      "unique",
			query:     `INSERT INTO users (name) VALUES ('alice')`,
			wantCode:  UniqueViolation,
			wantTable: "users",
			wantCol:   "name",
		},
		{
			name:      "not null",
			query:     `INSERT INTO users (name) VALUES (NULL)`,
			wantCode:  NotNullViolation,
			wantTable: "users",
			wantCol:   "name",
		},
		{
			name:     "check",
			query:    `INSERT INTO users (name, rating) VALUES ('bob', 150)`,
			wantCode: CheckViolation,
		},
		{
			name:     "foreign key",
			query:    `INSERT INTO advertisements (owner_id) VALUES (99)`,
			wantCode: ForeignKeyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.query)
			require.Error(t, err)

			var sqlErr *Error
			require.True(t, errors.As(Normalize(err), &sqlErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantCode, sqlErr.Code)
			assert.Equal(t, SeverityError, sqlErr.Severity)
			if tt.wantTable != "" {
				assert.Equal(t, tt.wantTable, sqlErr.TableName)
				assert.Equal(t, tt.wantCol, sqlErr.ColumnName)
			}
		})
	}
}

func TestHandleError_SQLiteUnique(t *testing.T) {
	db := openSQLite(t)

	_, err := db.Exec(`INSERT INTO users (name) VALUES ('alice')`)
	require.Error(t, err)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(HandleError(err), &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A User with this Name already exists", httpErr.Message)
}
