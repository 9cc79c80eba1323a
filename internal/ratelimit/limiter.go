package ratelimit

import (
	"context"
	"fmt"
)

// Exceeded describes the first limit a request went over.
type Exceeded struct {
	Scope Scope
	Limit LimitConfig
	Count int64
}

func (e *Exceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
		e.Scope, e.Count, e.Limit.Max, e.Limit.Window)
}

// Limiter checks requests against a Policy. Every limit is tracked under its
// own key so a short burst window and a long window never share counters.
type Limiter struct {
	store  Store
	policy *Policy
}

func NewLimiter(store Store, policy *Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Check records the request against every limit of scopes. It returns a
// non-nil Exceeded when the request must be rejected.
func (l *Limiter) Check(ctx context.Context, client string, scopes []Scope) (*Exceeded, error) {
	for _, scope := range scopes {
		exceeded, err := l.check(ctx, client+":"+string(scope), scope, l.policy.Limits[scope])
		if exceeded != nil || err != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

// CheckRoute applies endpoint-specific limits keyed by route template, so
// all paths matching the same template share a counter per client.
func (l *Limiter) CheckRoute(ctx context.Context, client, route string, limits []LimitConfig) (*Exceeded, error) {
	return l.check(ctx, client+":route:"+route, Scope("route:"+route), limits)
}

func (l *Limiter) check(ctx context.Context, prefix string, scope Scope, limits []LimitConfig) (*Exceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &Exceeded{Scope: scope, Limit: limit, Count: count}, nil
		}
	}

	return nil, nil
}
