package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/tokenforge/tokenforge/pkg/retry/backoff"
)

// Strategy decides whether another attempt follows a failed one. It may
// sleep or have other side effects before answering.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts attempts in total, the first included.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors allows another attempt only for errors matching one of
// retriable.
func RetriableErrors(retriable ...error) Strategy {
	return func(_ uint, err error) bool {
		return matchesAny(err, retriable)
	}
}

// Backoff sleeps for the delay strategy yields, capped at maxBackoff, and
// always allows the next attempt.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, _ error) bool {
		sleeperImpl.Sleep(capped(strategy(attempts), maxBackoff))
		return true
	}
}

// BackoffWithJitter is Backoff with the capped delay moved by up to
// jitter*delay in either direction. A jitter of 0.1 on 100ms sleeps
// anywhere in [90ms, 110ms].
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := capped(strategy(attempts), maxBackoff)
		offset := (2*rand.Float64() - 1) * jitter
		sleeperImpl.Sleep(time.Duration(float64(delay) * (1 + offset)))
		return true
	}
}

// Context stops once ctx is done.
func Context(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// Notify hands every refused-so-far failure to fn and never stops the loop.
// Place it after the strategies that can.
func Notify(fn func(attempts uint, err error)) Strategy {
	return func(attempts uint, err error) bool {
		fn(attempts, err)
		return true
	}
}

// Wait sleeps like Backoff but gives up, and stops the loop, as soon as ctx
// is done.
func Wait(ctx context.Context, strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, _ error) bool {
		return sleeperImpl.SleepContext(ctx, capped(strategy(attempts), maxBackoff))
	}
}

func capped(delay, max time.Duration) time.Duration {
	if delay > max {
		return max
	}
	return delay
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type sleeper interface {
	Sleep(time.Duration)
	SleepContext(context.Context, time.Duration) bool
}

type timeSleeper struct{}

func (timeSleeper) Sleep(d time.Duration) { time.Sleep(d) }

func (timeSleeper) SleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

var sleeperImpl sleeper = timeSleeper{}
