package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	healthy   = "healthy"
	unhealthy = "unhealthy"
)

const defaultTimeout = 2 * time.Second

// Handler pings every registered dependency concurrently.
type Handler struct {
	checks  map[string]Checker
	timeout time.Duration
	logger  *zap.Logger
}

func NewHandler(checks map[string]Checker, logger *zap.Logger) *Handler {
	return &Handler{checks: checks, timeout: defaultTimeout, logger: logger}
}

// Response is 200 when every dependency answers and 503 otherwise, so it
// can back a readiness probe directly.
type Response struct {
	Status int
	Body   struct {
		Status string            `doc:"ok or degraded"                 json:"status"`
		Checks map[string]string `doc:"Dependency name to its status" json:"checks"`
	}
}

func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(h.checks))
	)

	for name, checker := range h.checks {
		wg.Add(1)

		go func() {
			defer wg.Done()

			state := healthy
			if err := checker.Ping(ctx); err != nil {
				h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))

				state = unhealthy
			}

			mu.Lock()
			results[name] = state
			mu.Unlock()
		}()
	}

	wg.Wait()

	resp := &Response{Status: http.StatusOK}
	resp.Body.Status = StatusOK
	resp.Body.Checks = results

	for _, state := range results {
		if state == unhealthy {
			resp.Status = http.StatusServiceUnavailable
			resp.Body.Status = StatusDegraded

			break
		}
	}

	return resp, nil
}

// Names lists the registered dependencies in a stable order.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RegisterRoutes mounts GET /health. Probes are never rate limited.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
