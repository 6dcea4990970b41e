package middleware

import (
	"net/http"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MsgRouteNotFound is returned for paths no route matches.
const MsgRouteNotFound = "Route not found"

// GlobalMiddlewares groups global middleware and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger produces one "API" log line per request, with severity
// based on the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The response is not written yet when a handler returns an error;
			// the error handler decides the status later.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				statusCode = errorStatus(v.Error)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error is rendered as {"status":"error","message":...}. Unknown
// errors are run through sqlerr.HandleError and end up as a generic 500;
// their details only reach the logs.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err
	httpErr := toHTTPError(err)

	logger := GetLogger(c)

	var e *zerolog.Event
	if httpErr.Status >= 500 {
		e = logger.Error().Stack().Err(originalErr)
	} else {
		e = logger.Debug().Err(originalErr)
	}
	e.Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr.Body())
}

// toHTTPError classifies any error into the response it should produce.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return fromEchoError(echoErr)
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	status := echoErr.Code
	code := errs.MakeUpperCaseWithUnderscores(http.StatusText(status))

	if status == http.StatusNotFound {
		return errs.NewNotFoundError(MsgRouteNotFound, &code)
	}

	message := http.StatusText(status)
	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		message = msg
	}

	// Internal details of a 5xx never reach the client.
	if status >= 500 {
		message = http.StatusText(status)
	}

	return &errs.HTTPError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// errorStatus is the status GlobalErrorHandler will answer err with.
func errorStatus(err error) int {
	return toHTTPError(err).Status
}
