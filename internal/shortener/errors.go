package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when no mapping exists for a code.
	ErrNotFound = errors.New("url not found")

	// ErrCodeConflict is returned by repositories when the code is already taken.
	ErrCodeConflict = errors.New("short code already exists")

	// ErrStoreUnavailable wraps infrastructure failures and exhausted code retries.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes a create request that cannot be served.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
