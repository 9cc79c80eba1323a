package middleware_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func ping(context.Context, *struct{}) (*pingOutput, error) {
	out := &pingOutput{}
	out.Body.OK = true

	return out, nil
}

type codeInput struct {
	ShortCode string `path:"shortCode"`
}

func lookup(context.Context, *codeInput) (*pingOutput, error) {
	return nil, huma.Error404NotFound("URL not found")
}

// registerPing adds GET and POST routes with the given rate limit config.
func registerPing(api huma.API, path string, cfg *ratelimit.EndpointConfig) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		op := huma.Operation{
			OperationID: method + path,
			Method:      method,
			Path:        path,
		}
		if cfg != nil {
			op.Metadata = map[string]any{ratelimit.MetadataKey: *cfg}
		}

		huma.Register(api, op, ping)
	}
}

func newAPI(t *testing.T) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)

	return api
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func policy(scope ratelimit.Scope, maxRequests int64) *ratelimit.Policy {
	return ratelimit.NewPolicyBuilder().AddLimit(scope, maxRequests, time.Minute).Build()
}
