package middleware

import (
	"github.com/deppfellow/adboard/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server,
// built once from the application container and reused during router setup.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers,
	// and the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger to every request.
	ContextEnhancer *ContextEnhancer

	// Tracing installs New Relic and adds custom transaction attributes.
	// It degrades to a no-op without a New Relic application.
	Tracing *TracingMiddleware

	// RateLimit enforces the per-client request budget.
	RateLimit *RateLimitMiddleware

	// Metrics records Prometheus request counters and latencies.
	Metrics *MetricsMiddleware
}

func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
		Metrics:         NewMetricsMiddleware(s),
	}
}
