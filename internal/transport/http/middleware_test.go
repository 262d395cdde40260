package http

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRateLimiter_SweepsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.clients["203.0.113.50"] = &client{
		lim:  rate.NewLimiter(rl.r, rl.burst),
		seen: time.Now().Add(-10 * time.Minute),
	}
	rl.lastSweep = time.Now().Add(-2 * sweepEvery)

	rl.get("198.51.100.1")

	rl.mu.Lock()
	_, stale := rl.clients["203.0.113.50"]
	_, fresh := rl.clients["198.51.100.1"]
	rl.mu.Unlock()
	if stale {
		t.Fatal("stale bucket survived the sweep")
	}
	if !fresh {
		t.Fatal("fresh bucket missing after the sweep")
	}
}

func TestRateLimiter_SweepKeepsActiveBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.get("198.51.100.1")
	rl.lastSweep = time.Now().Add(-2 * sweepEvery)

	rl.get("198.51.100.2")

	rl.mu.Lock()
	_, ok := rl.clients["198.51.100.1"]
	rl.mu.Unlock()
	if !ok {
		t.Fatal("recently seen bucket was swept")
	}
}
