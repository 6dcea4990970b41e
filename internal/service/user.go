package service

import (
	"context"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client-facing messages for user errors.
const (
	MsgUserExists   = "user already exists"
	MsgUserNotFound = "no such user"
)

var (
	codeUserExists   = "USER_ALREADY_EXISTS"
	codeUserNotFound = "USER_NOT_FOUND"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, payload *model.CreateUserPayload) (*model.User, error) {
	user, err := s.repo.Create(ctx, payload.Fields())
	if err != nil {
		return nil, translateUserError(err)
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateUserError(err)
	}
	return user, nil
}

// UpdateUser applies the fields present in the payload; an empty payload
// returns the user unchanged.
func (s *UserService) UpdateUser(ctx context.Context, payload *model.PatchUserPayload) (*model.User, error) {
	fields := payload.Fields()

	user, err := s.repo.Update(ctx, payload.ID, fields)
	if err != nil {
		return nil, translateUserError(err)
	}

	if len(fields) > 0 {
		zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Int("fields", len(fields)).Msg("user patched")
	}
	return user, nil
}

// DeleteUser removes the user together with all of their advertisements.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translateUserError(err)
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user deleted")
	return user, nil
}

func translateUserError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNameTaken):
		return errs.NewConflictError(MsgUserExists, &codeUserExists)
	case errors.Is(err, repository.ErrUserNotFound):
		return errs.NewNotFoundError(MsgUserNotFound, &codeUserNotFound)
	default:
		return err
	}
}
