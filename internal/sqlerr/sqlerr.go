// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database drivers (pgx for
// PostgreSQL, modernc for SQLite) and converts them into one
// driver-neutral shape, so callers can ask "was this a unique
// violation?" without caring which store produced it.
package sqlerr

import (
	"errors"
	"fmt"
)

// Code is a driver-neutral classification of a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
)

// Severity mirrors the PostgreSQL severity levels. SQLite errors are always SeverityError.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is the normalized database error.
//
// DatabaseCode keeps the raw driver code (SQLSTATE for Postgres,
// extended result code for SQLite) for logs.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

// Unwrap exposes the original driver error to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a PostgreSQL SQLSTATE to a Code.
//
// Reference: https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	default:
		return Other
	}
}

// MapSeverity maps the severity string reported by PostgreSQL.
func MapSeverity(severity string) Severity {
	switch severity {
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	case "NOTICE":
		return SeverityNotice
	case "DEBUG":
		return SeverityDebug
	case "INFO":
		return SeverityInfo
	case "LOG":
		return SeverityLog
	default:
		return SeverityError
	}
}

// Normalize converts a raw driver error into *Error when it recognizes one.
//
// Errors it does not recognize (including nil) are returned unchanged, so
// it is safe to call on every error coming out of a query.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return err
	}

	if converted := convertDriverError(err); converted != nil {
		return converted
	}

	return err
}

// convertDriverError tries every supported driver in turn.
func convertDriverError(err error) *Error {
	if pgErr := asPgError(err); pgErr != nil {
		return ConvertPgError(pgErr)
	}
	if sqliteErr := asSQLiteError(err); sqliteErr != nil {
		return ConvertSQLiteError(sqliteErr)
	}
	return nil
}
