package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/deppfellow/adboard/internal/database"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.HTTPRequests.WithLabelValues("GET", "/user/:id", "200").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.HTTPRequests.WithLabelValues("GET", "/user/:id", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "/user/:id", "200")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()

	logger := zerolog.Nop()
	db, err := database.NewSQLite(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "metrics.db"),
	}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping(context.Background()))

	m.RegisterDatabase(db)
	m.HTTPRequests.WithLabelValues("POST", "/user", "201").Inc()
	m.HTTPDuration.WithLabelValues("POST", "/user").Observe(0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.Contains(text, `adboard_http_requests_total{method="POST",route="/user",status="201"} 1`))
	assert.Contains(t, text, "adboard_http_request_duration_seconds_bucket")
	assert.Contains(t, text, "go_sql_open_connections")
	assert.Contains(t, text, "go_goroutines")
}
