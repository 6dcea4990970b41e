// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It parses requests, handles input validation using the..
// validation package, and calls the appropriate service layer.
// It acts as the interface between the HTTP request and the core..
// business logic.
package handler

import (
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	Health         *HealthHandler
	OpenAPI        *OpenAPIHandler
	Users          *UserHandler
	Advertisements *AdvertisementHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(s),
		OpenAPI:        NewOpenAPIHandler(s),
		Users:          NewUserHandler(s, services.Users),
		Advertisements: NewAdvertisementHandler(s, services.Advertisements),
	}
}
