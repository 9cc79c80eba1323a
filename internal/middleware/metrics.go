package middleware

import (
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/expiring-shortener/internal/metrics"
)

// Metrics records request count, latency and concurrency per route template.
func Metrics(m *metrics.Metrics) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		next(ctx)

		route := routeOf(ctx)
		method := ctx.Method()

		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
