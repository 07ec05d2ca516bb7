package http

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestMutationLimiterEnforcesLimit(t *testing.T) {
	l := newMutationLimiter(2, time.Minute)
	defer l.stop()

	var m securityMetrics
	if !l.allow("10.0.0.1", &m) || !l.allow("10.0.0.1", &m) {
		t.Fatalf("first two requests must pass")
	}
	if l.allow("10.0.0.1", &m) {
		t.Fatalf("third request inside the window must be refused")
	}
	if got := atomic.LoadInt64(&m.rateLimitHits); got != 1 {
		t.Fatalf("rateLimitHits = %d, want 1", got)
	}
	// Other clients track their own window.
	if !l.allow("10.0.0.2", &m) {
		t.Fatalf("unrelated client must not be throttled")
	}
}

func TestMutationLimiterWindowReset(t *testing.T) {
	l := newMutationLimiter(1, 20*time.Millisecond)
	defer l.stop()

	if !l.allow("10.0.0.1", nil) {
		t.Fatalf("first request must pass")
	}
	if l.allow("10.0.0.1", nil) {
		t.Fatalf("second request inside the window must be refused")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.allow("10.0.0.1", nil) {
		t.Fatalf("request after the window expires must pass")
	}
}

func TestMutationLimiterEviction(t *testing.T) {
	l := newMutationLimiter(5, time.Minute)
	defer l.stop()

	l.allow("10.0.0.1", nil)
	l.allow("10.0.0.2", nil)
	l.evictBefore(time.Now().Add(time.Second))
	l.mu.Lock()
	n := len(l.visitors)
	l.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected all visitors evicted, %d remain", n)
	}
}
