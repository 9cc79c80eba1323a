package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/expiring-shortener/internal/analytics"
	"github.com/serroba/expiring-shortener/internal/handlers"
	"github.com/serroba/expiring-shortener/internal/health"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/middleware"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
	"github.com/serroba/expiring-shortener/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API. Invoking huma.API
// registers every route, which connects every backing service.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", promhttp.HandlerFor(
			do.MustInvoke[*prometheus.Registry](i),
			promhttp.HandlerOpts{},
		))

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		publishers, err := do.Invoke[analytics.Publishers](i)
		if err != nil {
			return nil, err
		}

		checks, err := healthChecks(i, opts)
		if err != nil {
			return nil, err
		}

		api := humachi.New(do.MustInvoke[*chi.Mux](i), huma.DefaultConfig("Expiring URL Shortener", "1.0.0"))

		api.UseMiddleware(middleware.Metrics(m))
		api.UseMiddleware(middleware.RequestMeta(api))

		if opts.RateLimit {
			limiter, err := do.Invoke[*ratelimit.Limiter](i)
			if err != nil {
				return nil, err
			}

			api.UseMiddleware(middleware.RateLimit(api, limiter, ratelimit.NewOperationScopeResolver(), m, logger))
		}

		healthHandler := health.NewHandler(checks, logger)
		health.RegisterRoutes(api, healthHandler)
		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, opts.PublicBaseURL(), publishers, m, logger))

		logger.Info("routes registered",
			zap.String("store", opts.Store),
			zap.String("base_url", opts.PublicBaseURL()),
			zap.Strings("health_checks", healthHandler.Names()),
		)

		return api, nil
	})
}

func healthChecks(i *do.Injector, opts *Options) (map[string]health.Checker, error) {
	checks := make(map[string]health.Checker)

	switch opts.Store {
	case StoreMongo:
		m, err := do.Invoke[*Mongo](i)
		if err != nil {
			return nil, err
		}

		checks["mongo"] = health.NewMongoChecker(m.Client)
	case StorePostgres:
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		checks["postgres"] = health.NewPostgresChecker(pg.Pool)
	}

	if !opts.InMemory() {
		r, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		checks["redis"] = health.NewRedisChecker(r.Client)
	}

	return checks, nil
}
