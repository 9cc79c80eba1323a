package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/expiring-shortener/internal/handlers"
	"github.com/serroba/expiring-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createBody struct {
	ShortURL    string    `json:"shortUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
}

func (f *fixture) create(t *testing.T, url string, hours float64) createBody {
	t.Helper()

	resp := f.api.Post("/shorten", map[string]any{"originalUrl": url, "expireInHours": hours})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body createBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	return body
}

func TestCreateShortURL(t *testing.T) {
	t.Run("returns the short url and expiry", func(t *testing.T) {
		f := newFixture(t)

		resp := f.api.Post("/shorten", map[string]any{"originalUrl": testURL, "expireInHours": 1})
		require.Equal(t, http.StatusOK, resp.Code)

		var body createBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

		assert.Len(t, body.Code, 8)
		assert.Equal(t, testBaseURL+"/"+body.Code, body.ShortURL)
		assert.Equal(t, body.ShortURL, resp.Header().Get("Location"))
		assert.Equal(t, testURL, body.OriginalURL)
		assert.True(t, f.clock.Now().Add(time.Hour).Equal(body.ExpiresAt))
	})

	t.Run("ignores unknown body fields", func(t *testing.T) {
		f := newFixture(t)

		resp := f.api.Post("/shorten", map[string]any{
			"originalUrl":   testURL,
			"expireInHours": 1,
			"extra":         1,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var body createBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, testURL, body.OriginalURL)
	})

	t.Run("honours fractional hours", func(t *testing.T) {
		f := newFixture(t)

		body := f.create(t, testURL, 0.5)

		assert.True(t, f.clock.Now().Add(30*time.Minute).Equal(body.ExpiresAt))
	})

	t.Run("publishes a created event and counts the link", func(t *testing.T) {
		f := newFixture(t)

		body := f.create(t, testURL, 24)

		require.Len(t, f.events.created, 1)
		assert.Equal(t, body.Code, f.events.created[0].Code)
		assert.True(t, body.ExpiresAt.Equal(f.events.created[0].ExpiresAt))
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.LinksCreated), 0)
	})

	t.Run("still succeeds when publishing fails", func(t *testing.T) {
		f := newFixture(t)
		f.events.err = errBroker

		f.create(t, testURL, 24)

		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PublishErrors.WithLabelValues("url.created")), 0)
	})

	t.Run("rejects malformed bodies at the schema", func(t *testing.T) {
		tests := []struct {
			name string
			body any
		}{
			{name: "missing originalUrl", body: map[string]any{"expireInHours": 1}},
			{name: "missing expireInHours", body: map[string]any{"originalUrl": testURL}},
			{name: "non-numeric expireInHours", body: map[string]any{"originalUrl": testURL, "expireInHours": "24"}},
			{name: "non-string originalUrl", body: map[string]any{"originalUrl": 42, "expireInHours": 1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				resp := f.api.Post("/shorten", tt.body)

				assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
				assert.Empty(t, f.events.created)
			})
		}
	})

	t.Run("rejects invalid values with 400", func(t *testing.T) {
		tests := []struct {
			name  string
			url   string
			hours float64
		}{
			{name: "empty url", url: "", hours: 1},
			{name: "blank url", url: "   ", hours: 1},
			{name: "ttl beyond ten years", url: testURL, hours: 87601},
			{name: "negative ttl beyond ten years", url: testURL, hours: -87601},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				resp := f.api.Post("/shorten", map[string]any{"originalUrl": tt.url, "expireInHours": tt.hours})

				assert.Equal(t, http.StatusBadRequest, resp.Code)
				assert.Contains(t, resp.Body.String(), "validation failed")
			})
		}
	})

	t.Run("maps store failures to 503", func(t *testing.T) {
		f := newFixtureWith(t, &stubShortener{
			createErr: fmt.Errorf("%w: %w", shortener.ErrStoreUnavailable, errBroker),
		})

		resp := f.api.Post("/shorten", map[string]any{"originalUrl": testURL, "expireInHours": 1})

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.NotContains(t, resp.Body.String(), errBroker.Error())
	})

	t.Run("maps unknown failures to 500", func(t *testing.T) {
		f := newFixtureWith(t, &stubShortener{createErr: errBroker})

		resp := f.api.Post("/shorten", map[string]any{"originalUrl": testURL, "expireInHours": 1})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects an active link with 302", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, testURL, 24)

		resp := f.api.Get("/" + created.Code)

		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, testURL, resp.Header().Get("Location"))
		assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	})

	t.Run("unknown code is 404 with a plain body", func(t *testing.T) {
		f := newFixture(t)

		resp := f.api.Get("/Abcdefgh")

		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "URL not found", resp.Body.String())
		assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))
	})

	t.Run("code outside the alphabet is 404", func(t *testing.T) {
		f := newFixture(t)

		resp := f.api.Get("/abc.defg")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("negative ttl is expired immediately", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, testURL, -1)

		resp := f.api.Get("/" + created.Code)

		assert.Equal(t, http.StatusGone, resp.Code)
		assert.Equal(t, "This URL has expired", resp.Body.String())
	})

	t.Run("link expires strictly after expiresAt", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, testURL, 1)

		f.clock.Advance(time.Hour)
		assert.Equal(t, http.StatusFound, f.api.Get("/"+created.Code).Code)

		f.clock.Advance(time.Nanosecond)
		assert.Equal(t, http.StatusGone, f.api.Get("/"+created.Code).Code)
	})

	t.Run("publishes the outcome of every resolve", func(t *testing.T) {
		f := newFixture(t)
		active := f.create(t, testURL, 1)
		expired := f.create(t, testURL, -1)

		f.api.Get("/" + active.Code)
		f.api.Get("/" + expired.Code)
		f.api.Get("/missing1")

		outcomes := make([]string, 0, len(f.events.accessed))
		for _, e := range f.events.accessed {
			outcomes = append(outcomes, e.Outcome)
		}

		assert.Equal(t, []string{"active", "expired", "not_found"}, outcomes)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Resolutions.WithLabelValues("expired")), 0)
	})

	t.Run("store failure is 503", func(t *testing.T) {
		f := newFixtureWith(t, &stubShortener{
			resolveErr: fmt.Errorf("%w: %w", shortener.ErrStoreUnavailable, errBroker),
		})

		resp := f.api.Get("/Abcdefgh")

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Empty(t, f.events.accessed)
	})
}

func TestConcurrentCreates(t *testing.T) {
	f := newFixture(t)

	const n = 20

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]string, n)
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			url := fmt.Sprintf("https://example.com/%d", i)

			resp := f.api.Post("/shorten", map[string]any{"originalUrl": url, "expireInHours": 1})
			if !assert.Equal(t, http.StatusOK, resp.Code) {
				return
			}

			var body createBody
			if !assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body)) {
				return
			}

			mu.Lock()
			codes[body.Code] = url
			mu.Unlock()
		}()
	}

	wg.Wait()

	require.Len(t, codes, n)

	for code, url := range codes {
		resp := f.api.Get("/" + code)

		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, url, resp.Header().Get("Location"))
	}
}

func TestRequestMetaFromContext(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		meta := handlers.RequestMeta{ClientIP: "203.0.113.9", UserAgent: "curl/8", Referrer: "https://ref.example"}

		got := handlers.RequestMetaFromContext(handlers.ContextWithRequestMeta(context.Background(), meta))

		assert.Equal(t, meta, got)
	})

	t.Run("zero value when absent", func(t *testing.T) {
		assert.Equal(t, handlers.RequestMeta{}, handlers.RequestMetaFromContext(context.Background()))
	})
}
