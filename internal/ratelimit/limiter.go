// Package ratelimit provides rate limiting for API calls using a token bucket algorithm.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
type RateLimiter struct {
	mu           sync.Mutex
	tokens       float64
	maxTokens    float64
	refillRate   float64
	lastRefill   time.Time
	lastWarnTime time.Time
	now          func() time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	return newRateLimiter(tokensPerSecond, burstSize, time.Now)
}

func newRateLimiter(tokensPerSecond, burstSize float64, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:     burstSize,
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: now(),
		now:        now,
	}
}

// NewUserScopeRateLimiter creates a rate limiter for the v3 "user" scope.
func NewUserScopeRateLimiter() *RateLimiter {
	return NewRateLimiter(UserScopeRatePerSec, UserScopeBurstCapacity)
}

// NewJobsUsageRateLimiter creates a rate limiter for v2 job query endpoints.
func NewJobsUsageRateLimiter() *RateLimiter {
	return NewRateLimiter(JobsUsageRatePerSec, JobsUsageBurstCapacity)
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := rl.reserve()
		if ok {
			return nil
		}

		if wait > 2*time.Second {
			rl.mu.Lock()
			if rl.now().Sub(rl.lastWarnTime) > 10*time.Second {
				log.Warn().Dur("wait", wait).Msg("rate limited, waiting for API capacity")
				rl.lastWarnTime = rl.now()
			}
			rl.mu.Unlock()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (rl *RateLimiter) TryAcquire() bool {
	_, ok := rl.reserve()
	return ok
}

// reserve refills the bucket and takes a token if one is available. Otherwise it
// returns how long until the next token.
func (rl *RateLimiter) reserve() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1.0 {
		rl.tokens--
		return 0, true
	}
	needed := 1.0 - rl.tokens
	return time.Duration(needed / rl.refillRate * float64(time.Second)), false
}

func (rl *RateLimiter) refillLocked() {
	now := rl.now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// GetCurrentTokens returns the current number of tokens (for testing/debugging).
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}
