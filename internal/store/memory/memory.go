// Package memory holds the ledger in process memory. Used by tests and
// as the default dev backend.
package memory

import (
	"context"
	"sync"

	"moneta/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction // most recent first
}

func New() *Store {
	return &Store{}
}

// Seed replaces the stored collection, newest first. Handy for tests.
func (s *Store) Seed(items []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), items...)
}

// Append prepends the record, matching the display convention.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction{t}, s.items...)
	return nil
}

// Remove deletes at most one record matching owner and id.
func (s *Store) Remove(_ context.Context, owner string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id && t.Owner == owner {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListByOwner returns a copy of the owner's records in stored order.
func (s *Store) ListByOwner(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

// Len reports the total record count across owners.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
