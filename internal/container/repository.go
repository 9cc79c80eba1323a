package container

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/expiring-shortener/internal/metrics"
	"github.com/serroba/expiring-shortener/internal/shortener"
	"github.com/serroba/expiring-shortener/internal/store"
	"go.uber.org/zap"
)

// RepositoryPackage provides the mapping store chosen by --store, behind
// the Redis cache unless the service runs in memory or the cache is off.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := baseRepository(i, opts)
		if err != nil {
			return nil, err
		}

		if opts.InMemory() || opts.CacheTTL <= 0 {
			return repo, nil
		}

		r, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		logger.Info("redis cache enabled", zap.Int("ttl_seconds", opts.CacheTTL))

		return store.NewRedisCacheRepository(repo, r.Client, time.Duration(opts.CacheTTL)*time.Second, opts.Retention()), nil
	})
}

func baseRepository(i *do.Injector, opts *Options) (shortener.Repository, error) {
	switch opts.Store {
	case StoreMemory:
		return store.NewMemoryStore(), nil
	case StorePostgres:
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(pg.Pool), nil
	case StoreMongo:
		m, err := do.Invoke[*Mongo](i)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		mongoStore := store.NewMongoStore(m.Database)
		if err := mongoStore.EnsureIndexes(ctx, opts.Retention()); err != nil {
			return nil, fmt.Errorf("create mongo indexes: %w", err)
		}

		return mongoStore, nil
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Store)
	}
}

func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		generate, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(repo, generate,
			shortener.WithMaxAttempts(opts.CodeAttempts),
			shortener.WithMaxExpireInHours(float64(opts.MaxExpireHours)),
			shortener.WithCollisionHook(m.ObserveCollision),
		), nil
	})
}
