package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUsers returns err from every call, or the user when err is nil.
type stubUsers struct {
	user       *model.User
	err        error
	lastFields model.Fields
}

func (s *stubUsers) Create(_ context.Context, fields model.Fields) (*model.User, error) {
	s.lastFields = fields
	return s.user, s.err
}

func (s *stubUsers) GetByID(context.Context, int64) (*model.User, error) { return s.user, s.err }

func (s *stubUsers) Update(_ context.Context, _ int64, fields model.Fields) (*model.User, error) {
	s.lastFields = fields
	return s.user, s.err
}

func (s *stubUsers) Delete(context.Context, int64) (*model.User, error) { return s.user, s.err }

type stubAdvertisements struct {
	adv *model.Advertisement
	err error
}

func (s *stubAdvertisements) Create(context.Context, model.Fields) (*model.Advertisement, error) {
	return s.adv, s.err
}

func (s *stubAdvertisements) GetByID(context.Context, int64) (*model.Advertisement, error) {
	return s.adv, s.err
}

func (s *stubAdvertisements) Update(context.Context, int64, model.Fields) (*model.Advertisement, error) {
	return s.adv, s.err
}

func (s *stubAdvertisements) Delete(context.Context, int64) (*model.Advertisement, error) {
	return s.adv, s.err
}

func ptr[T any](v T) *T { return &v }

func requireHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	assert.Equal(t, status, httpErr.Status)
	assert.Equal(t, message, httpErr.Message)
}

func TestUserService_TranslatesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		svc := NewUserService(&stubUsers{err: repository.ErrUserNameTaken})

		_, err := svc.CreateUser(ctx, &model.CreateUserPayload{Name: ptr("alice")})
		requireHTTPError(t, err, http.StatusConflict, MsgUserExists)

		_, err = svc.UpdateUser(ctx, &model.PatchUserPayload{ID: 1, Name: ptr("alice")})
		requireHTTPError(t, err, http.StatusConflict, MsgUserExists)
	})

	t.Run("missing user", func(t *testing.T) {
		svc := NewUserService(&stubUsers{err: repository.ErrUserNotFound})

		_, err := svc.GetUser(ctx, 1)
		requireHTTPError(t, err, http.StatusNotFound, MsgUserNotFound)

		_, err = svc.DeleteUser(ctx, 1)
		requireHTTPError(t, err, http.StatusNotFound, MsgUserNotFound)
	})

	t.Run("unexpected errors pass through", func(t *testing.T) {
		boom := errors.New("connection reset")
		svc := NewUserService(&stubUsers{err: boom})

		_, err := svc.GetUser(ctx, 1)
		assert.ErrorIs(t, err, boom)
	})
}

func TestUserService_UpdatePassesOnlyPresentFields(t *testing.T) {
	repo := &stubUsers{user: &model.User{ID: 1, Name: "alice", Rating: 30}}
	svc := NewUserService(repo)

	_, err := svc.UpdateUser(context.Background(), &model.PatchUserPayload{ID: 1, Rating: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, model.Fields{model.ColumnRating: 30}, repo.lastFields)

	_, err = svc.UpdateUser(context.Background(), &model.PatchUserPayload{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, repo.lastFields)
}

func TestAdvertisementService_TranslatesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing owner is not found", func(t *testing.T) {
		svc := NewAdvertisementService(&stubAdvertisements{err: repository.ErrOwnerNotFound})

		_, err := svc.CreateAdvertisement(ctx, &model.CreateAdvertisementPayload{
			Title:       ptr("Sale"),
			Description: ptr("Big discount!"),
			OwnerID:     ptr(int64(9)),
		})
		requireHTTPError(t, err, http.StatusNotFound, MsgOwnerNotFound)
	})

	t.Run("missing advertisement", func(t *testing.T) {
		svc := NewAdvertisementService(&stubAdvertisements{err: repository.ErrAdvertisementNotFound})

		_, err := svc.GetAdvertisement(ctx, 1)
		requireHTTPError(t, err, http.StatusNotFound, MsgAdvertisementNotFound)

		_, err = svc.UpdateAdvertisement(ctx, &model.PatchAdvertisementPayload{ID: 1})
		requireHTTPError(t, err, http.StatusNotFound, MsgAdvertisementNotFound)

		_, err = svc.DeleteAdvertisement(ctx, 1)
		requireHTTPError(t, err, http.StatusNotFound, MsgAdvertisementNotFound)
	})
}

func TestNewServices(t *testing.T) {
	services := NewServices(&repository.Repositories{
		Users:          &stubUsers{},
		Advertisements: &stubAdvertisements{},
	})
	assert.NotNil(t, services.Users)
	assert.NotNil(t, services.Advertisements)
}
