package ledger

import (
	"sync"
	"time"
)

// IDGenerator issues unique record ids. Injectable so tests can use a
// plain counter.
type IDGenerator interface {
	Next() int64
}

// timeIDGenerator issues millisecond-timestamp ids bumped past the last
// issued value. Raw UnixMilli collides when two records land in the
// same tick; the bump keeps ids unique and strictly increasing within
// a process.
type timeIDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewTimeIDGenerator returns the default time-derived generator.
func NewTimeIDGenerator() IDGenerator {
	return &timeIDGenerator{}
}

func (g *timeIDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// CounterIDGenerator is a deterministic generator starting at 1,
// used by tests and by stores seeded from persisted collections.
type CounterIDGenerator struct {
	mu   sync.Mutex
	next int64
}

// NewCounterIDGenerator returns a counter starting after seed.
func NewCounterIDGenerator(seed int64) *CounterIDGenerator {
	return &CounterIDGenerator{next: seed}
}

func (g *CounterIDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}
