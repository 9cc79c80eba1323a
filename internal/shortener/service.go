package shortener

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts bounds how many codes Create tries before giving up.
	DefaultMaxAttempts = 5
	// DefaultMaxExpireInHours is ten years.
	DefaultMaxExpireInHours = 87600
)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxAttempts sets the number of codes tried per Create call.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithMaxExpireInHours sets the largest accepted absolute TTL.
func WithMaxExpireInHours(hours float64) Option {
	return func(s *Service) {
		if hours > 0 {
			s.maxExpireInHours = hours
		}
	}
}

// WithCollisionHook registers a callback invoked each time a generated code
// is rejected by the repository as already taken.
func WithCollisionHook(hook func(code Code)) Option {
	return func(s *Service) {
		s.onCollision = hook
	}
}

// Service creates and resolves expiring short URLs.
type Service struct {
	store            Repository
	generateCode     CodeGenerator
	now              func() time.Time
	maxAttempts      int
	maxExpireInHours float64
	onCollision      func(code Code)
}

// NewService creates a new shortener service.
func NewService(store Repository, generator CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:            store,
		generateCode:     generator,
		now:              time.Now,
		maxAttempts:      DefaultMaxAttempts,
		maxExpireInHours: DefaultMaxExpireInHours,
		onCollision:      func(Code) {},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores a new mapping for originalURL that expires expireInHours
// after now. Negative values produce a mapping that is already expired.
func (s *Service) Create(ctx context.Context, originalURL string, expireInHours float64) (*ShortURL, error) {
	if err := s.validate(originalURL, expireInHours); err != nil {
		return nil, err
	}

	createdAt := s.now()
	expiresAt := createdAt.Add(time.Duration(expireInHours * float64(time.Hour)))

	for range s.maxAttempts {
		shortURL := &ShortURL{
			Code:        Code(s.generateCode()),
			OriginalURL: originalURL,
			CreatedAt:   createdAt,
			ExpiresAt:   expiresAt,
		}

		err := s.store.Save(ctx, shortURL)
		if err == nil {
			return shortURL, nil
		}

		if !errors.Is(err, ErrCodeConflict) {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		s.onCollision(shortURL.Code)
	}

	return nil, fmt.Errorf("%w: %w after %d attempts", ErrStoreUnavailable, ErrCodeConflict, s.maxAttempts)
}

// Resolve looks up code and classifies it as not found, expired or active.
// The mapping is returned for both expired and active outcomes.
func (s *Service) Resolve(ctx context.Context, code Code) (*ShortURL, Outcome, error) {
	if !ValidCode(code) {
		return nil, OutcomeNotFound, nil
	}

	shortURL, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, OutcomeNotFound, nil
		}

		return nil, "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if shortURL.IsExpired(s.now()) {
		return shortURL, OutcomeExpired, nil
	}

	return shortURL, OutcomeActive, nil
}

func (s *Service) validate(originalURL string, expireInHours float64) error {
	if strings.TrimSpace(originalURL) == "" {
		return &ValidationError{Field: "originalUrl", Reason: "must not be empty"}
	}

	if math.IsNaN(expireInHours) || math.IsInf(expireInHours, 0) {
		return &ValidationError{Field: "expireInHours", Reason: "must be a finite number"}
	}

	if math.Abs(expireInHours) > s.maxExpireInHours {
		return &ValidationError{
			Field:  "expireInHours",
			Reason: fmt.Sprintf("must be within ±%g hours", s.maxExpireInHours),
		}
	}

	return nil
}
