package container

import (
	"github.com/samber/do"
	"github.com/serroba/expiring-shortener/internal/ratelimit"
	"github.com/serroba/expiring-shortener/internal/store"
)

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		var rlStore ratelimit.Store = store.NewRateLimitMemoryStore()

		if !opts.InMemory() {
			r, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			rlStore = store.NewRateLimitRedisStore(r.Client)
		}

		return ratelimit.NewLimiter(rlStore, ratelimit.DefaultPolicy()), nil
	})
}
