package service

import (
	"context"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/deppfellow/adboard/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client-facing messages for advertisement errors.
//
// A missing owner is reported as 404, not 409: the referenced user does not exist.
const (
	MsgOwnerNotFound         = "owner with such owner_id does not exist"
	MsgAdvertisementNotFound = "no such adv"
)

var (
	codeOwnerNotFound         = "ADVERTISEMENT_OWNER_NOT_FOUND"
	codeAdvertisementNotFound = "ADVERTISEMENT_NOT_FOUND"
)

type AdvertisementService struct {
	repo repository.AdvertisementRepository
}

func NewAdvertisementService(repo repository.AdvertisementRepository) *AdvertisementService {
	return &AdvertisementService{repo: repo}
}

func (s *AdvertisementService) CreateAdvertisement(ctx context.Context, payload *model.CreateAdvertisementPayload) (*model.Advertisement, error) {
	adv, err := s.repo.Create(ctx, payload.Fields())
	if err != nil {
		return nil, translateAdvertisementError(err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("adv_id", adv.ID).
		Int64("owner_id", adv.OwnerID).
		Msg("advertisement created")
	return adv, nil
}

func (s *AdvertisementService) GetAdvertisement(ctx context.Context, id int64) (*model.Advertisement, error) {
	adv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateAdvertisementError(err)
	}
	return adv, nil
}

func (s *AdvertisementService) UpdateAdvertisement(ctx context.Context, payload *model.PatchAdvertisementPayload) (*model.Advertisement, error) {
	fields := payload.Fields()

	adv, err := s.repo.Update(ctx, payload.ID, fields)
	if err != nil {
		return nil, translateAdvertisementError(err)
	}

	if len(fields) > 0 {
		zerolog.Ctx(ctx).Info().Int64("adv_id", adv.ID).Int("fields", len(fields)).Msg("advertisement patched")
	}
	return adv, nil
}

func (s *AdvertisementService) DeleteAdvertisement(ctx context.Context, id int64) (*model.Advertisement, error) {
	adv, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translateAdvertisementError(err)
	}

	zerolog.Ctx(ctx).Info().Int64("adv_id", adv.ID).Msg("advertisement deleted")
	return adv, nil
}

func translateAdvertisementError(err error) error {
	switch {
	case errors.Is(err, repository.ErrOwnerNotFound):
		return errs.NewNotFoundError(MsgOwnerNotFound, &codeOwnerNotFound)
	case errors.Is(err, repository.ErrAdvertisementNotFound):
		return errs.NewNotFoundError(MsgAdvertisementNotFound, &codeAdvertisementNotFound)
	default:
		return err
	}
}
