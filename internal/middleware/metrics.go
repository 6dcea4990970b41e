package middleware

import (
	"strconv"
	"time"

	"github.com/deppfellow/adboard/internal/server"
	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests no route matched, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latencies per route template.
type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

func (m *MetricsMiddleware) Record() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = errorStatus(err)
			}

			method := c.Request().Method
			route := routeLabel(c.Path())

			m.server.Metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.server.Metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func routeLabel(path string) string {
	if path == "" || path == "/*" {
		return unmatchedRoute
	}
	return path
}
