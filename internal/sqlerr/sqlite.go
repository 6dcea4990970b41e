package sqlerr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraintTargetRegex extracts "<table>.<column>" from SQLite constraint messages:
//
//	UNIQUE constraint failed: users.name
//	NOT NULL constraint failed: advertisements.title
var constraintTargetRegex = regexp.MustCompile(`constraint failed: ([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)`)

func asSQLiteError(err error) *sqlite.Error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr
	}
	return nil
}

// ConvertSQLiteError converts a modernc SQLite error into our custom sqlerr.Error.
//
// SQLite has no SQLSTATE; the extended result code tells the constraint kind.
// The message is used as a fallback when only the primary code (SQLITE_CONSTRAINT)
// is reported, and to recover table/column names.
func ConvertSQLiteError(src *sqlite.Error) *Error {
	msg := src.Error()

	sqlErr := &Error{
		Code:         mapSQLiteCode(src.Code(), msg),
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(src.Code()),
		Message:      msg,
		driverErr:    src,
	}

	if matches := constraintTargetRegex.FindStringSubmatch(msg); len(matches) == 3 {
		sqlErr.TableName = matches[1]
		sqlErr.ColumnName = matches[2]
	}

	return sqlErr
}

func mapSQLiteCode(code int, msg string) Code {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return UniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKeyViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNullViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CheckViolation
	}

	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return UniqueViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ForeignKeyViolation
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return NotNullViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return CheckViolation
	}

	return Other
}
