package ratelimit

import (
	"context"
	"time"
)

// Store keeps per-key request timestamps for a sliding window.
type Store interface {
	// Record adds a request for key and returns how many requests fall
	// inside the trailing window, the new one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
