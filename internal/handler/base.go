package handler

import (
	"time"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/middleware"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc represents a typed endpoint function that:
//
// - receives a validated request payload (Req)
// - returns a response (Res) or an error
//
// Req is a POINTER type, e.g. *model.CreateUserPayload, because Echo's
// Bind needs a pointer to populate fields.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler defines how a successful handler result is written to the
// HTTP response, and which New Relic attributes describe it.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if txn != nil && result != nil {
		txn.AddAttribute("response.status", h.status)
	}
}

// handleRequest is the shared execution pipeline for all handlers.
//
// It centralizes:
//
// - request binding + validation
// - structured logging (with request context)
// - New Relic tracing attributes and error reporting
// - timing (validation duration, handler duration, total duration)
// - response writing
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	// Set by the nrecho middleware when New Relic is enabled.
	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		// Client mistakes are warnings, not errors.
		event := logger.Warn().Err(err).Dur("validation_duration", validationDuration)
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && len(httpErr.Errors) > 0 {
			event = event.Interface("field_errors", httpErr.Errors)
		}
		event.Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		// The global error handler formats the response.
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		// Translated domain errors (404/409) are expected outcomes;
		// anything else is a failure worth a stack trace.
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status < 500 {
			logger.Info().
				Str("error_code", httpErr.Code).
				Int("status", httpErr.Status).
				Dur("handler_duration", handlerDuration).
				Msg("request rejected")
		} else {
			logger.Error().
				Stack().
				Err(err).
				Dur("handler_duration", handlerDuration).
				Dur("total_duration", totalDuration).
				Msg("handler execution failed")

			if txn != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
		}

		if txn != nil {
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with binding, validation, logging and tracing,
// and returns an echo.HandlerFunc that can be registered directly on routes.
//
// newReq is called once per request so concurrent requests never share a payload:
//
//	e.POST("/user", handler.Handle(h, h.CreateUser, http.StatusCreated, func() *model.CreateUserPayload {
//		return &model.CreateUserPayload{}
//	}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// newPayload is the common newReq for payload structs with no defaults.
func newPayload[T any]() *T {
	return new(T)
}
