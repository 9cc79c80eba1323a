package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/expiring-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Mappings are immutable, so a cached entry never goes stale; its TTL is
// only capped so it does not outlive the backing store's retention window.
type RedisCacheRepository struct {
	store     shortener.Repository
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
// A zero retention means the backing store keeps expired mappings forever.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl, retention time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:     store,
		client:    client,
		prefix:    "short_url:",
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
	}
}

// Save stores a short URL in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := r.store.Save(ctx, shortURL); err != nil {
		return err
	}

	r.cacheURL(ctx, shortURL)

	return nil
}

// GetByCode retrieves a short URL by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	url, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	originalURL, ok := result["original_url"]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	expiresAt, err := parseUnixNano(result["expires_at"])
	if err != nil {
		return nil, shortener.ErrNotFound
	}

	createdAt, _ := parseUnixNano(result["created_at"])

	return &shortener.ShortURL{
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	ttl := r.entryTTL(url)
	if ttl <= 0 {
		return
	}

	key := r.prefix + string(url.Code)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"original_url": url.OriginalURL,
		"created_at":   url.CreatedAt.UnixNano(),
		"expires_at":   url.ExpiresAt.UnixNano(),
	})
	pipe.Expire(ctx, key, ttl)

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) entryTTL(url *shortener.ShortURL) time.Duration {
	ttl := r.ttl

	if r.retention > 0 {
		if remaining := url.ExpiresAt.Add(r.retention).Sub(r.now()); remaining < ttl {
			ttl = remaining
		}
	}

	return ttl
}

func parseUnixNano(s string) (time.Time, error) {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(0, nanos), nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
