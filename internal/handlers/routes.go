package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
)

// RegisterRoutes mounts the shortener endpoints.
func RegisterRoutes(api huma.API, h *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short URL",
		Description: "Stores originalUrl under a random short code that stops resolving after expireInHours.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.CreateShortURL)

	// Must stay 302. Browsers cache a 301 past the link's expiry.
	huma.Register(api, huma.Operation{
		OperationID:   "resolve-short-url",
		Method:        http.MethodGet,
		Path:          "/{shortCode}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects while the link is active, answers 404 for unknown codes and 410 once expired.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound, http.StatusGone, http.StatusServiceUnavailable},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.RedirectToURL)
}
