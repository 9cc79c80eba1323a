package shortener

import "context"

// Repository persists short URL mappings.
//
// Save must fail with ErrCodeConflict when the code is already stored, and
// GetByCode must fail with ErrNotFound when it is not. Implementations rely on
// the backing store's own atomicity for uniqueness.
type Repository interface {
	Save(ctx context.Context, shortURL *ShortURL) error
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)
}
