package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := newRateLimiter(2, 3, clock.Now)

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("token %d should be available from the burst", i)
		}
	}
	if rl.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	clock.Advance(500 * time.Millisecond)
	if !rl.TryAcquire() {
		t.Error("one token should refill after 0.5s at 2/s")
	}

	clock.Advance(time.Hour)
	if got := rl.GetCurrentTokens(); got != 3 {
		t.Errorf("tokens should cap at burst size, got %v", got)
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Error("Wait should return promptly on cancellation")
	}
}

func TestRateLimiter_WaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(50, 1)
	_ = rl.Wait(context.Background())

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("second token should take ~20ms at 50/s, took %v", elapsed)
	}
}

func TestPresets(t *testing.T) {
	if got := NewUserScopeRateLimiter().GetCurrentTokens(); got != UserScopeBurstCapacity {
		t.Errorf("user scope burst = %v", got)
	}
	if got := NewJobsUsageRateLimiter().GetCurrentTokens(); got != JobsUsageBurstCapacity {
		t.Errorf("jobs usage burst = %v", got)
	}
}
