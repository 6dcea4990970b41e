// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Every operation is a single statement. Mutations use RETURNING so the
// caller gets the stored row back without a second round trip, and there is
// no window between checking a row exists and changing it.
package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/adboard/internal/database"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/sqlerr"
	"github.com/pkg/errors"
)

// Domain errors returned by the repositories. Services translate them into
// HTTP errors; anything else is an unexpected storage failure.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrUserNameTaken         = errors.New("user name already taken")
	ErrOwnerNotFound         = errors.New("advertisement owner not found")
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, fields model.Fields) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, fields model.Fields) (*model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
}

// AdvertisementRepository persists advertisements.
type AdvertisementRepository interface {
	Create(ctx context.Context, fields model.Fields) (*model.Advertisement, error)
	GetByID(ctx context.Context, id int64) (*model.Advertisement, error)
	Update(ctx context.Context, id int64, fields model.Fields) (*model.Advertisement, error)
	Delete(ctx context.Context, id int64) (*model.Advertisement, error)
}

// statement is a query and its bind arguments.
type statement struct {
	query string
	args  []any
}

// builder assembles INSERT and UPDATE statements from a field set.
//
// Only columns listed in writable are accepted; the order of writable fixes
// the column order so the same field set always yields the same SQL.
type builder struct {
	dialect  database.Dialect
	table    string
	writable []string
	args     []any
}

func newBuilder(dialect database.Dialect, table string, writable ...string) *builder {
	return &builder{dialect: dialect, table: table, writable: writable}
}

func (b *builder) bind(value any) string {
	b.args = append(b.args, value)
	return b.dialect.Placeholder(len(b.args))
}

// columns returns the writable columns present in fields, rejecting unknown keys.
func (b *builder) columns(fields model.Fields) ([]string, error) {
	allowed := make(map[string]bool, len(b.writable))
	for _, col := range b.writable {
		allowed[col] = true
	}

	var unknown []string
	for key := range fields {
		if !allowed[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: unknown columns %s", b.table, strings.Join(unknown, ", "))
	}

	cols := make([]string, 0, len(fields))
	for _, col := range b.writable {
		if _, ok := fields[col]; ok {
			cols = append(cols, col)
		}
	}
	return cols, nil
}

func (b *builder) insert(fields model.Fields, returning string) (statement, error) {
	cols, err := b.columns(fields)
	if err != nil {
		return statement{}, err
	}
	if len(cols) == 0 {
		return statement{}, fmt.Errorf("%s: nothing to insert", b.table)
	}

	b.args = nil
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
		placeholders[i] = b.bind(fields[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quoteIdentifier(b.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		returning,
	)
	return statement{query: query, args: b.args}, nil
}

// update builds "UPDATE ... SET ... WHERE id = ? RETURNING ...". Callers
// handle the empty field set themselves, since it is not a write.
func (b *builder) update(id int64, fields model.Fields, returning string) (statement, error) {
	cols, err := b.columns(fields)
	if err != nil {
		return statement{}, err
	}
	if len(cols) == 0 {
		return statement{}, fmt.Errorf("%s: nothing to update", b.table)
	}

	b.args = nil
	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = fmt.Sprintf("%s = %s", quoteIdentifier(col), b.bind(fields[col]))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s RETURNING %s",
		quoteIdentifier(b.table),
		strings.Join(assignments, ", "),
		b.bind(id),
		returning,
	)
	return statement{query: query, args: b.args}, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// translate maps a query error onto the repository's domain errors.
//
// notFound is returned for "no rows"; unique and foreignKey for the
// matching constraint violations when non-nil. Anything else is wrapped
// with a stack trace for the logs.
func translate(err error, op string, notFound, unique, foreignKey error) error {
	if err == nil {
		return nil
	}
	if database.IsNoRows(err) {
		return notFound
	}

	switch sqlerr.ErrCode(err) {
	case sqlerr.UniqueViolation:
		if unique != nil {
			return unique
		}
	case sqlerr.ForeignKeyViolation:
		if foreignKey != nil {
			return foreignKey
		}
	}

	return errors.Wrap(sqlerr.Normalize(err), op)
}
