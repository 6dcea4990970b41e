package repository

import (
	"github.com/deppfellow/adboard/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users          UserRepository
	Advertisements AdvertisementRepository
}

// NewRepositories builds the repositories over the server's database,
// whichever driver it was opened with.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(s.DB),
		Advertisements: NewAdvertisementRepository(s.DB),
	}
}
