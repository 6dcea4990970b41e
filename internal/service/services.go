// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data. Repository errors are translated here into the
// HTTP errors the client sees.
package service

import (
	"github.com/deppfellow/adboard/internal/repository"
)

type Services struct {
	Users          *UserService
	Advertisements *AdvertisementService
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Users:          NewUserService(repos.Users),
		Advertisements: NewAdvertisementService(repos.Advertisements),
	}
}
