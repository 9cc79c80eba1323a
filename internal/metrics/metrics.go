// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/serroba/expiring-shortener/internal/shortener"
)

// Metrics groups the service's collectors. Route labels always carry the
// route template, never the request path, so short codes cannot blow up
// label cardinality.
type Metrics struct {
	LinksCreated   prometheus.Counter
	Resolutions    *prometheus.CounterVec
	CodeCollisions prometheus.Counter
	RateLimited    *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates the collectors and registers them on reg. It panics on
// duplicate registration, so use a fresh registry per Metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_links_created_total",
			Help: "Short links successfully created.",
		}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_resolutions_total",
			Help: "Short code lookups by outcome.",
		}, []string{"outcome"}),
		CodeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_code_collisions_total",
			Help: "Generated codes rejected because they were already taken.",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_event_publish_errors_total",
			Help: "Analytics events that could not be published.",
		}, []string{"topic"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
	}

	reg.MustRegister(
		m.LinksCreated,
		m.Resolutions,
		m.CodeCollisions,
		m.RateLimited,
		m.PublishErrors,
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPInFlight,
	)

	return m
}

// ObserveResolution counts one resolve outcome.
func (m *Metrics) ObserveResolution(outcome shortener.Outcome) {
	m.Resolutions.WithLabelValues(string(outcome)).Inc()
}

// ObserveCollision satisfies the shortener collision hook signature.
func (m *Metrics) ObserveCollision(shortener.Code) {
	m.CodeCollisions.Inc()
}
