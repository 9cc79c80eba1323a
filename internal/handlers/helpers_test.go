package handlers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/serroba/expiring-shortener/internal/analytics"
	"github.com/serroba/expiring-shortener/internal/handlers"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/shortener"
	"github.com/serroba/expiring-shortener/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL = "http://sho.rt"
	testURL     = "https://example.com"
)

var errBroker = errors.New("broker unavailable")

// eventRecorder captures analytics events instead of publishing them.
type eventRecorder struct {
	mu       sync.Mutex
	err      error
	created  []analytics.URLCreatedEvent
	accessed []analytics.URLAccessedEvent
}

func (r *eventRecorder) publishers() analytics.Publishers {
	return analytics.Publishers{
		URLCreated: func(_ context.Context, e *analytics.URLCreatedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.created = append(r.created, *e)

			return r.err
		},
		URLAccessed: func(_ context.Context, e *analytics.URLAccessedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.accessed = append(r.accessed, *e)

			return r.err
		},
	}
}

// clock is a settable time source shared by the service and the test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// stubShortener returns scripted results for handler error paths.
type stubShortener struct {
	createURL  *shortener.ShortURL
	createErr  error
	resolveURL *shortener.ShortURL
	outcome    shortener.Outcome
	resolveErr error
}

func (s *stubShortener) Create(context.Context, string, float64) (*shortener.ShortURL, error) {
	return s.createURL, s.createErr
}

func (s *stubShortener) Resolve(context.Context, shortener.Code) (*shortener.ShortURL, shortener.Outcome, error) {
	return s.resolveURL, s.outcome, s.resolveErr
}

type fixture struct {
	api     humatest.TestAPI
	events  *eventRecorder
	metrics *metrics.Metrics
	clock   *clock
}

func newFixtureWith(t *testing.T, svc handlers.Shortener) *fixture {
	t.Helper()

	_, api := humatest.New(t)

	f := &fixture{
		api:     api,
		events:  &eventRecorder{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}

	handlers.RegisterRoutes(api, handlers.NewURLHandler(svc, testBaseURL+"/", f.events.publishers(), f.metrics, zap.NewNop()))

	return f
}

// newFixture wires the real service over an in-memory store.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	gen, err := shortener.NewCodeGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	svc := shortener.NewService(store.NewMemoryStore(), gen, shortener.WithClock(c.Now))

	f := newFixtureWith(t, svc)
	f.clock = c

	return f
}
