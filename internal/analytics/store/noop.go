package store

import (
	"context"

	"github.com/serroba/expiring-shortener/internal/analytics"
	"go.uber.org/zap"
)

// Noop logs events instead of storing them.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	n.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("original_url", event.OriginalURL),
		zap.Time("created_at", event.CreatedAt),
		zap.Time("expires_at", event.ExpiresAt),
		zap.String("client_ip", event.ClientIP),
	)

	return nil
}

func (n *Noop) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	n.logger.Info("link accessed",
		zap.String("code", event.Code),
		zap.String("outcome", event.Outcome),
		zap.Time("accessed_at", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
