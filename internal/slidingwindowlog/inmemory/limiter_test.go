// Package swlinmemory_test contains tests for the in-memory sliding window log.
package swlinmemory_test

import (
	"sync"
	"testing"
	"time"

	"keyed.ratelimiter/internal/clocktest"
	swlinmemory "keyed.ratelimiter/internal/slidingwindowlog/inmemory"
	"keyed.ratelimiter/types"
)

var mockTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func TestSlidingWindowLogLimiter(t *testing.T) {
	clock := clocktest.New(mockTime)
	limiter := swlinmemory.NewLimiter("test_sliding_log", time.Second, 2, swlinmemory.WithClock(clock.Now))
	expectedReset := mockTime.Add(time.Second)

	// t=0: allowed, the only entry is the one just added.
	decision, err := limiter.TryAcquire("user1")
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	if !decision.Allowed || decision.Remaining != 1 || decision.Limit != 2 {
		t.Fatalf("t=0: unexpected decision %+v", decision)
	}
	if !decision.ResetAt.Equal(expectedReset) {
		t.Fatalf("t=0: resetAt = %v, expected %v", decision.ResetAt, expectedReset)
	}

	// t=0.1: allowed, resetAt still follows the oldest entry.
	clock.Advance(100 * time.Millisecond)
	decision, _ = limiter.TryAcquire("user1")
	if !decision.Allowed || decision.Remaining != 0 {
		t.Fatalf("t=0.1: unexpected decision %+v", decision)
	}
	if !decision.ResetAt.Equal(expectedReset) {
		t.Fatalf("t=0.1: resetAt = %v, expected %v", decision.ResetAt, expectedReset)
	}

	// t=0.5: denied until the t=0 entry ages out.
	clock.Set(mockTime.Add(500 * time.Millisecond))
	decision, _ = limiter.TryAcquire("user1")
	if decision.Allowed || decision.Remaining != 0 || decision.Limit != 2 {
		t.Fatalf("t=0.5: unexpected decision %+v", decision)
	}
	if !decision.ResetAt.Equal(expectedReset) {
		t.Fatalf("t=0.5: resetAt = %v, expected %v", decision.ResetAt, expectedReset)
	}

	// t=1.2: both old entries are outside the window.
	clock.Set(mockTime.Add(1200 * time.Millisecond))
	decision, _ = limiter.TryAcquire("user1")
	if !decision.Allowed || decision.Remaining != 1 {
		t.Fatalf("t=1.2: unexpected decision %+v", decision)
	}
	if want := clock.Now().Add(time.Second); !decision.ResetAt.Equal(want) {
		t.Fatalf("t=1.2: resetAt = %v, expected %v", decision.ResetAt, want)
	}
}

func TestSlidingWindowLogLimiter_BoundaryIsExclusive(t *testing.T) {
	clock := clocktest.New(mockTime)
	limiter := swlinmemory.NewLimiter("test_boundary", time.Second, 2, swlinmemory.WithClock(clock.Now))

	limiter.TryAcquire("user1")
	clock.Advance(100 * time.Millisecond)
	limiter.TryAcquire("user1")

	// Exactly one window after the first entry: it no longer counts.
	clock.Set(mockTime.Add(time.Second))
	decision, _ := limiter.TryAcquire("user1")
	if !decision.Allowed || decision.Remaining != 0 {
		t.Fatalf("Request at the boundary returned %+v", decision)
	}
	if want := mockTime.Add(1100 * time.Millisecond); !decision.ResetAt.Equal(want) {
		t.Fatalf("ResetAt = %v, expected %v", decision.ResetAt, want)
	}

	// One nanosecond before the second entry ages out: still full.
	clock.Set(mockTime.Add(1100*time.Millisecond - time.Nanosecond))
	decision, _ = limiter.TryAcquire("user1")
	if decision.Allowed {
		t.Fatalf("Request allowed while the log is full: %+v", decision)
	}
}

func TestSlidingWindowLogLimiter_NoSeamBurst(t *testing.T) {
	clock := clocktest.New(mockTime)
	limiter := swlinmemory.NewLimiter("test_seam", time.Second, 3, swlinmemory.WithClock(clock.Now))

	clock.Advance(900 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if d, _ := limiter.TryAcquire("user1"); !d.Allowed {
			t.Fatalf("Request %d unexpectedly denied", i+1)
		}
	}

	// A fixed window aligned to t=0 would reset here; the log does not.
	clock.Set(mockTime.Add(1100 * time.Millisecond))
	if d, _ := limiter.TryAcquire("user1"); d.Allowed {
		t.Fatalf("Request allowed across the seam: %+v", d)
	}
}

func TestSlidingWindowLogLimiter_DenialIsIdempotent(t *testing.T) {
	clock := clocktest.New(mockTime)
	limiter := swlinmemory.NewLimiter("test_idempotent_denial", time.Second, 2, swlinmemory.WithClock(clock.Now))

	limiter.TryAcquire("user1")
	limiter.TryAcquire("user1")
	for i := 0; i < 10; i++ {
		clock.Advance(10 * time.Millisecond)
		if d, _ := limiter.TryAcquire("user1"); d.Allowed {
			t.Fatalf("Denied call %d was allowed", i+1)
		}
	}

	// Denied calls were not logged, so both slots free up together.
	clock.Set(mockTime.Add(time.Second))
	for i := 0; i < 2; i++ {
		if d, _ := limiter.TryAcquire("user1"); !d.Allowed {
			t.Fatalf("Request %d after expiry unexpectedly denied", i+1)
		}
	}
}

func TestSlidingWindowLogLimiter_IndependentKeys(t *testing.T) {
	clock := clocktest.New(mockTime)
	limiter := swlinmemory.NewLimiter("test_independent", time.Minute, 2, swlinmemory.WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		limiter.TryAcquire("client1")
	}
	decision, err := limiter.TryAcquire("client2")
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	if !decision.Allowed || decision.Remaining != 1 {
		t.Fatalf("Request for different identifier returned %+v", decision)
	}
	if limiter.TrackedKeys() != 2 {
		t.Fatalf("TrackedKeys = %d, expected 2", limiter.TrackedKeys())
	}
}

func TestSlidingWindowLogLimiter_InvalidKey(t *testing.T) {
	limiter := swlinmemory.NewLimiter("test_invalid_key", time.Minute, 5)

	for _, key := range []string{"", " ", "\n\t"} {
		_, err := limiter.TryAcquire(key)
		if !types.IsInvalidArgument(err) {
			t.Fatalf("Expected ErrInvalidArgument for key %q, got %v", key, err)
		}
	}
	if limiter.TrackedKeys() != 0 {
		t.Fatalf("Invalid keys created state: TrackedKeys = %d", limiter.TrackedKeys())
	}
}

func TestSlidingWindowLogLimiter_RealClockExpiry(t *testing.T) {
	limiter := swlinmemory.NewLimiter("test_real_clock", 100*time.Millisecond, 2)

	limiter.TryAcquire("user1")
	limiter.TryAcquire("user1")
	if d, _ := limiter.TryAcquire("user1"); d.Allowed {
		t.Fatalf("Request unexpectedly allowed after limit")
	}

	time.Sleep(150 * time.Millisecond)

	decision, err := limiter.TryAcquire("user1")
	if err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	if !decision.Allowed || decision.Remaining != 1 {
		t.Fatalf("Request after window expiry returned %+v", decision)
	}
}

func TestSlidingWindowLogLimiter_Concurrency(t *testing.T) {
	limiter := swlinmemory.NewLimiter("test_concurrency", time.Minute, 10)
	numRequests := 200
	results := make(chan types.Decision, numRequests)

	var wg sync.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.TryAcquire("user1")
			if err != nil {
				t.Errorf("TryAcquire failed: %v", err)
				return
			}
			results <- decision
		}()
	}
	wg.Wait()
	close(results)

	allowedCount := 0
	seenRemaining := make(map[int]bool)
	for d := range results {
		if !d.Allowed {
			continue
		}
		allowedCount++
		if seenRemaining[d.Remaining] {
			t.Fatalf("Remaining %d handed out twice", d.Remaining)
		}
		seenRemaining[d.Remaining] = true
	}
	if allowedCount != 10 {
		t.Fatalf("Allowed %d requests, expected exactly 10", allowedCount)
	}
}
