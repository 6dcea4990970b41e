package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the OpenAPI UI for trying the API from a browser.
//
// The page loads its JS from a CDN and reads /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the embedded openapi.html.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := fs.ReadFile(static.FS, "openapi.html")

	// Docs change often during development.
	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, templateBytes); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
