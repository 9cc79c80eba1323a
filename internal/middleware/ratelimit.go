package middleware

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimit rejects requests over the limiter's policy with 429.
//
// Operations may carry a ratelimit.EndpointConfig under ratelimit.MetadataKey
// to opt out (Disabled), to replace the policy with their own Limits, or to
// pick the Scope their requests count against.
func RateLimit(
	api huma.API,
	limiter *ratelimit.Limiter,
	resolver ratelimit.ScopeResolver,
	m *metrics.Metrics,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		var (
			exceeded *ratelimit.Exceeded
			err      error
			key      = clientKey(ctx)
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			exceeded, err = limiter.CheckRoute(ctx.Context(), key, routeOf(ctx), cfg.Limits)
		} else {
			exceeded, err = limiter.Check(ctx.Context(), key, resolver.Resolve(ctx))
		}

		if err != nil {
			// An unavailable limiter store must not take the service down.
			logger.Error("rate limit check failed, allowing request",
				zap.String("route", routeOf(ctx)),
				zap.Error(err),
			)
			next(ctx)

			return
		}

		if exceeded != nil {
			m.RateLimited.WithLabelValues(string(exceeded.Scope)).Inc()
			logger.Warn("rate limit exceeded",
				zap.String("route", routeOf(ctx)),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(exceeded.Scope)),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Limit.Max),
				zap.Duration("window", exceeded.Limit.Window),
				zap.String("client_ip", ClientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(int(exceeded.Limit.Window.Seconds())))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, exceeded.Error())

			return
		}

		next(ctx)
	}
}

// routeOf returns the route template, e.g. "/{shortCode}".
func routeOf(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}
