package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortURL is a stored mapping from a code to its target. It is written once
// and never mutated afterwards.
type ShortURL struct {
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsExpired reports whether the mapping is no longer valid at now.
// A mapping is still valid at exactly its ExpiresAt instant.
func (s *ShortURL) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Outcome classifies a resolve request.
type Outcome string

const (
	OutcomeNotFound Outcome = "not_found"
	OutcomeExpired  Outcome = "expired"
	OutcomeActive   Outcome = "active"
)
