package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/deppfellow/adboard/internal/metrics"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(method, target, nil), rec), rec
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "http error passes through",
			err:        fmt.Errorf("wrapped: %w", errs.NewConflictError("user already exists", nil)),
			wantStatus: http.StatusConflict,
			wantMsg:    "user already exists",
		},
		{
			name:       "unknown route",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    MsgRouteNotFound,
		},
		{
			name:       "method not allowed keeps echo message",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantMsg:    "Method Not Allowed",
		},
		{
			name:       "echo 5xx is sanitized",
			err:        echo.NewHTTPError(http.StatusServiceUnavailable, "pool exhausted at 10.0.0.3"),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "Service Unavailable",
		},
		{
			name:       "raw driver error falls back to sqlerr",
			err:        &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_name_key"},
			wantStatus: http.StatusConflict,
			wantMsg:    "A User with this Name already exists",
		},
		{
			name:       "anything else",
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := toHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
			assert.Equal(t, tt.wantStatus, errorStatus(tt.err))
		})
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(&server.Server{})

	c, rec := newContext(http.MethodPost, "/user")
	global.GlobalErrorHandler(errs.NewBadRequestError("Validation failed", nil, []errs.FieldError{
		{Field: "name", Error: "is required"},
	}), c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":[{"field":"name","error":"is required"}]}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/user/1")
	global.GlobalErrorHandler(fmt.Errorf("scan: unexpected column"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, rec.Body.String())

	c, rec = newContext(http.MethodHead, "/nope")
	global.GlobalErrorHandler(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGlobalErrorHandler_Committed(t *testing.T) {
	global := NewGlobalMiddlewares(&server.Server{})

	c, rec := newContext(http.MethodGet, "/user/1")
	require.NoError(t, c.String(http.StatusOK, "partial"))

	global.GlobalErrorHandler(errs.NewInternalServerError(), c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, handler(c))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, "abc-123")
	require.NoError(t, handler(c))
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	c, rec = newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, string(make([]byte, maxRequestIDLength+1)))
	require.NoError(t, handler(c))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36, "oversized ids are replaced")
}

func TestGetLogger_WithoutEnhancer(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	assert.NotNil(t, GetLogger(c))
}

func TestMetricsRecord(t *testing.T) {
	m := metrics.New()
	mw := NewMetricsMiddleware(&server.Server{Metrics: m})

	c, _ := newContext(http.MethodGet, "/user/7")
	c.SetPath("/user/:id")
	err := mw.Record()(func(c echo.Context) error {
		return errs.NewNotFoundError("no such user", nil)
	})(c)
	require.Error(t, err)

	c, _ = newContext(http.MethodGet, "/whatever")
	require.NoError(t, mw.Record()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/user/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", unmatchedRoute, "200")))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeLabel(""))
	assert.Equal(t, unmatchedRoute, routeLabel("/*"))
	assert.Equal(t, "/adv/:id", routeLabel("/adv/:id"))
}
