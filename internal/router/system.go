package router

import (
	"github.com/deppfellow/adboard/internal/handler"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the API itself:
// health, metrics, docs UI and its static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, s *server.Server) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
