// Package backoff provides delay schedules for retry strategies.
package backoff

import (
	"math"
	"time"
)

// Strategy returns the delay before the next attempt. Attempts start at 1.
type Strategy func(attempts uint) time.Duration

// Constant waits the same interval between every attempt.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Exponential multiplies the delay by base on every attempt.
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		return clamp(float64(baseDelay) * math.Pow(base, float64(attempts-1)))
	}
}

// BinaryExponential doubles the delay on every attempt.
//
// Ex. BinaryExponential(2*time.Second) = 2s, 4s, 8s, 16s, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// clamp saturates delays that overflow a time.Duration.
func clamp(delay float64) time.Duration {
	if delay >= math.MaxInt64 || delay < 0 {
		return math.MaxInt64
	}
	return time.Duration(delay)
}
