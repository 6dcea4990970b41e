package repository

import (
	"context"

	"github.com/deppfellow/adboard/internal/database"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/pkg/errors"
)

const userColumns = `id, name, rating`

// UserRepo is the UserRepository backed by either supported driver.
type UserRepo struct {
	db      database.Querier
	dialect database.Dialect
}

func NewUserRepository(db *database.Database) *UserRepo {
	return &UserRepo{db: db.Querier(), dialect: db.Dialect}
}

func (r *UserRepo) builder() *builder {
	return newBuilder(r.dialect, "users", model.ColumnName, model.ColumnRating)
}

func scanUser(row database.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(&user.ID, &user.Name, &user.Rating); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user. A taken name yields ErrUserNameTaken and inserts nothing.
func (r *UserRepo) Create(ctx context.Context, fields model.Fields) (*model.User, error) {
	stmt, err := r.builder().insert(fields, userColumns)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, stmt.query, stmt.args...))
	if err != nil {
		return nil, translate(err, "insert user", ErrUserNotFound, ErrUserNameTaken, nil)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ` + r.dialect.Placeholder(1)

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "get user", ErrUserNotFound, nil, nil)
	}
	return user, nil
}

// Update applies only the given fields. An empty field set is a read.
func (r *UserRepo) Update(ctx context.Context, id int64, fields model.Fields) (*model.User, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	stmt, err := r.builder().update(id, fields, userColumns)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, stmt.query, stmt.args...))
	if err != nil {
		return nil, translate(err, "update user", ErrUserNotFound, ErrUserNameTaken, nil)
	}
	return user, nil
}

// Delete removes the user and, through ON DELETE CASCADE, its advertisements.
func (r *UserRepo) Delete(ctx context.Context, id int64) (*model.User, error) {
	query := `DELETE FROM users WHERE id = ` + r.dialect.Placeholder(1) + ` RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "delete user", ErrUserNotFound, nil, nil)
	}
	return user, nil
}
