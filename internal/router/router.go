// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/adboard/internal/handler"
	"github.com/deppfellow/adboard/internal/middleware"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the full middleware stack.
//
// Order matters: the request id must exist before the context logger is
// built, the New Relic transaction must exist before EnhanceTracing reads
// it, and the limiter runs last so rejected requests are still logged
// and counted.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Metrics.Record(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h, s)

	h.Users.Register(router.Group("/user"))
	h.Advertisements.Register(router.Group("/adv"))

	return router
}
