package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// mutationLimiter throttles write traffic per client IP with a fixed
// window counter: the first request from an IP opens a window, and
// requests beyond the limit inside that window are refused. Limit and
// window come from configuration.
type mutationLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
}

func newMutationLimiter(limit int, window time.Duration) *mutationLimiter {
	l := &mutationLimiter{
		limit:    limit,
		window:   window,
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

// evictLoop periodically drops visitors whose window expired long ago,
// keeping the map bounded under churn from one-off clients.
func (l *mutationLimiter) evictLoop() {
	ticker := time.NewTicker(5 * l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictBefore(time.Now().Add(-10 * l.window))
		case <-l.done:
			return
		}
	}
}

func (l *mutationLimiter) evictBefore(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if v.windowStart.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

func (l *mutationLimiter) stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// allow records one request from clientIP and reports whether it still
// fits in the current window.
func (l *mutationLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[clientIP]
	if !ok || now.Sub(v.windowStart) >= l.window {
		l.visitors[clientIP] = &visitor{windowStart: now, count: 1}
		return true
	}

	v.count++
	if v.count > l.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
