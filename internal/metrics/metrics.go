// Package metrics holds the Prometheus collectors exposed on /metrics.
//
// Each Server owns its own registry, so tests can build many servers in
// one process without duplicate-registration panics.
package metrics

import (
	"net/http"

	"github.com/deppfellow/adboard/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adboard"

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RateLimitedHits *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken to handle HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		RateLimitedHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// RegisterDatabase exposes connection pool statistics for db.
func (m *Metrics) RegisterDatabase(db *database.Database) {
	if db.SQL != nil {
		m.Registry.MustRegister(collectors.NewDBStatsCollector(db.SQL, db.Driver))
		return
	}
	if db.Pool == nil {
		return
	}

	pool := db.Pool
	labels := prometheus.Labels{"db_name": db.Driver}
	factory := promauto.With(m.Registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "go_sql",
		Name:        "open_connections",
		Help:        "The number of established connections both in use and idle.",
		ConstLabels: labels,
	}, func() float64 { return float64(pool.Stat().TotalConns()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "go_sql",
		Name:        "in_use_connections",
		Help:        "The number of connections currently in use.",
		ConstLabels: labels,
	}, func() float64 { return float64(pool.Stat().AcquiredConns()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "go_sql",
		Name:        "idle_connections",
		Help:        "The number of idle connections.",
		ConstLabels: labels,
	}, func() float64 { return float64(pool.Stat().IdleConns()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "go_sql",
		Name:        "max_open_connections",
		Help:        "Maximum number of open connections to the database.",
		ConstLabels: labels,
	}, func() float64 { return float64(pool.Stat().MaxConns()) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
