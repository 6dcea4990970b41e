package middleware

import (
	"time"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// MsgTooManyRequests is the body message of a rate-limited response.
const MsgTooManyRequests = "Too many requests"

// rateLimiterExpiry is how long an idle client's bucket is kept.
const rateLimiterExpiry = 3 * time.Minute

// RateLimitMiddleware enforces a token-bucket budget per client IP and
// reports rejections to New Relic and Prometheus.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the limiter middleware, or a pass-through when disabled.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.Server.RateLimit
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	defaults := config.DefaultRateLimitConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: rateLimiterExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewInternalServerError()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("client", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError(MsgTooManyRequests)
		},
	})
}

// RecordRateLimitHit counts a rejected request for endpoint.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.Metrics != nil {
		r.server.Metrics.RateLimitedHits.WithLabelValues(routeLabel(endpoint)).Inc()
	}

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
