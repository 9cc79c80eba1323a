package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/expiring-shortener/internal/analytics"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/shortener"
	"go.uber.org/zap"
)

const (
	bodyNotFound = "URL not found"
	bodyExpired  = "This URL has expired"

	textPlain = "text/plain; charset=utf-8"
	noStore   = "no-store"
)

// Shortener is the part of shortener.Service the handlers use.
type Shortener interface {
	Create(ctx context.Context, originalURL string, expireInHours float64) (*shortener.ShortURL, error)
	Resolve(ctx context.Context, code shortener.Code) (*shortener.ShortURL, shortener.Outcome, error)
}

// URLHandler serves link creation and resolution.
type URLHandler struct {
	service    Shortener
	baseURL    string
	publishers analytics.Publishers
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewURLHandler creates a handler that builds short URLs under baseURL.
func NewURLHandler(
	service Shortener,
	baseURL string,
	publishers analytics.Publishers,
	m *metrics.Metrics,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publishers: publishers,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateShortURL stores a new expiring mapping and returns its short URL.
func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Create(ctx, req.Body.OriginalURL, req.Body.ExpireInHours)
	if err != nil {
		return nil, h.createError(err)
	}

	h.metrics.LinksCreated.Inc()

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		Code:        string(shortURL.Code),
		OriginalURL: shortURL.OriginalURL,
		CreatedAt:   shortURL.CreatedAt,
		ExpiresAt:   shortURL.ExpiresAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishers.URLCreated(ctx, event); err != nil {
		h.publishFailed(analytics.TopicURLCreated, event.Code, err)
	}

	full := h.baseURL + "/" + string(shortURL.Code)

	resp := &CreateShortURLResponse{Location: full}
	resp.Body.ShortURL = full
	resp.Body.ExpiresAt = shortURL.ExpiresAt
	resp.Body.Code = string(shortURL.Code)
	resp.Body.OriginalURL = shortURL.OriginalURL

	return resp, nil
}

func (h *URLHandler) createError(err error) error {
	var verr *shortener.ValidationError
	if errors.As(err, &verr) {
		return huma.Error400BadRequest("validation failed", &huma.ErrorDetail{
			Location: "body." + verr.Field,
			Message:  verr.Reason,
		})
	}

	if errors.Is(err, shortener.ErrStoreUnavailable) {
		h.logger.Error("failed to store short url", zap.Error(err))

		return huma.Error503ServiceUnavailable("store unavailable")
	}

	h.logger.Error("unexpected error creating short url", zap.Error(err))

	return huma.Error500InternalServerError("failed to create short url")
}

// RedirectToURL redirects to the original URL of an active link.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, outcome, err := h.service.Resolve(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		h.logger.Error("failed to resolve short url", zap.String("code", req.ShortCode), zap.Error(err))

		return nil, huma.Error503ServiceUnavailable("store unavailable")
	}

	h.metrics.ObserveResolution(outcome)

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Code:       req.ShortCode,
		Outcome:    string(outcome),
		AccessedAt: h.now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishers.URLAccessed(ctx, event); err != nil {
		h.publishFailed(analytics.TopicURLAccessed, event.Code, err)
	}

	switch outcome {
	case shortener.OutcomeActive:
		return &RedirectResponse{
			Status:       http.StatusFound,
			Location:     shortURL.OriginalURL,
			CacheControl: noStore,
		}, nil
	case shortener.OutcomeExpired:
		return textResponse(http.StatusGone, bodyExpired), nil
	default:
		return textResponse(http.StatusNotFound, bodyNotFound), nil
	}
}

func textResponse(status int, body string) *RedirectResponse {
	return &RedirectResponse{
		Status:       status,
		ContentType:  textPlain,
		CacheControl: noStore,
		Body:         []byte(body),
	}
}

func (h *URLHandler) publishFailed(topic, code string, err error) {
	h.metrics.PublishErrors.WithLabelValues(topic).Inc()
	h.logger.Warn("failed to publish analytics event",
		zap.String("topic", topic),
		zap.String("code", code),
		zap.Error(err),
	)
}
