// Package common provides small shared utilities used across the client.
package common

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound API requests with a thread-safe,
// dynamically adjustable limit. A nil *RateLimiter is valid and applies no
// throttling, which keeps call sites free of nil checks when rate limiting
// is disabled in configuration.
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex // protects limiter against concurrent adjustment
}

// NewRateLimiter creates a RateLimiter allowing rps requests per second with
// the given burst size. An rps of zero or less disables throttling and
// returns nil.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the limiter allows another request or the context is
// canceled. It returns the context's error if canceled while waiting.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.limiter.Wait(ctx)
}

// Limits returns the current requests-per-second and burst values.
func (rl *RateLimiter) Limits() (float64, int) {
	if rl == nil {
		return 0, 0
	}
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return float64(rl.limiter.Limit()), rl.limiter.Burst()
}

// UpdateLimits adjusts the requests-per-second and burst values at runtime,
// typically in response to rate-limit headers returned by the server.
func (rl *RateLimiter) UpdateLimits(rps float64, burst int) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiter.SetLimit(rate.Limit(rps))
	rl.limiter.SetBurst(burst)
}
