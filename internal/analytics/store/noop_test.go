package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/expiring-shortener/internal/analytics"
	"github.com/serroba/expiring-shortener/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	noop := store.NewNoop(zap.New(core))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, noop.SaveURLCreated(ctx, &analytics.URLCreatedEvent{
		Code:        "abcd1234",
		OriginalURL: "https://example.com",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}))
	require.NoError(t, noop.SaveURLAccessed(ctx, &analytics.URLAccessedEvent{
		Code:       "abcd1234",
		Outcome:    "expired",
		AccessedAt: now,
		Referrer:   "https://referrer.example",
	}))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, "link created", entries[0].Message)
	assert.Equal(t, "abcd1234", entries[0].ContextMap()["code"])

	assert.Equal(t, "link accessed", entries[1].Message)
	assert.Equal(t, "expired", entries[1].ContextMap()["outcome"])
}
