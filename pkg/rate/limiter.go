// Package rate throttles outgoing requests per key.
package rate

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits operations based on a provided key.
type Limiter interface {
	// Wait blocks until an operation for key may proceed, or ctx is done.
	Wait(ctx context.Context, key string) error
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing perSecond
// operations per key, with bursts of up to one second's worth. A
// non-positive rate never limits.
func NewLocalRateLimiter(perSecond float64) Limiter {
	if perSecond <= 0 {
		return &NoLimiter{}
	}

	return &localRateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    int(math.Ceil(perSecond)),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait implements Limiter.Wait.
func (l *localRateLimiter) Wait(ctx context.Context, key string) error {
	l.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.Unlock()

	return limiter.Wait(ctx)
}

// NoLimiter never limits operations
type NoLimiter struct {
}

// Wait implements Limiter.Wait.
func (n *NoLimiter) Wait(_ context.Context, _ string) error {
	return nil
}
