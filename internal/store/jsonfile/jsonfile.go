// Package jsonfile persists the ledger as the flat JSON array layout
// the browser variants kept in localStorage:
//
//	[{"id","owner","desc","amount","type","category","date"}, ...]
//
// Readers tolerate a missing file, an empty array, a missing owner
// field (default user) and corrupt payloads, which load as the empty
// ledger. The file is rewritten after every mutation.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"moneta/internal/core"
)

type record struct {
	ID       int64   `json:"id"`
	Owner    string  `json:"owner,omitempty"`
	Desc     string  `json:"desc"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

type Store struct {
	mu           sync.Mutex
	path         string
	defaultOwner string
	items        []core.Transaction // most recent first
}

// Open loads the collection at path, creating parent directories as
// needed. defaultOwner is assigned to records persisted without an
// owner field by the single-user variants.
func Open(path, defaultOwner string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s := &Store{path: path, defaultOwner: defaultOwner}
	s.items = s.load()
	return s, nil
}

// load reads the persisted array. Every failure mode degrades to the
// empty ledger; startup never fails on bad data.
func (s *Store) load() []core.Transaction {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Unreadable ledger file, starting empty", "path", s.path, "error", err)
		}
		return nil
	}
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil {
		slog.Warn("Corrupt ledger payload, starting empty", "path", s.path, "error", err)
		return nil
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, r := range recs {
		t := s.toTransaction(r)
		// Hand-edited files can hold records Append would have
		// rejected, negative amounts included. Drop them.
		if err := t.Validate(); err != nil {
			slog.Warn("Dropping invalid ledger record", "path", s.path, "id", r.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) toTransaction(r record) core.Transaction {
	owner := r.Owner
	if owner == "" {
		owner = s.defaultOwner
	}
	// The source treated every non-income record as an expense.
	kind := core.Expense
	if r.Type == string(core.Income) {
		kind = core.Income
	}
	return core.Transaction{
		ID:          r.ID,
		Owner:       owner,
		Description: r.Desc,
		Amount:      core.Money{Cents: int64(math.Round(r.Amount * 100))},
		Kind:        kind,
		Category:    r.Category,
		Date:        r.Date,
	}
}

func toRecord(t core.Transaction) record {
	return record{
		ID:       t.ID,
		Owner:    t.Owner,
		Desc:     t.Description,
		Amount:   t.Amount.Decimal(),
		Type:     string(t.Kind),
		Category: t.Category,
		Date:     t.Date,
	}
}

// persist rewrites the whole array via a temp file + rename so a crash
// mid-write never leaves a truncated payload behind.
func (s *Store) persist() error {
	recs := make([]record, len(s.items))
	for i, t := range s.items {
		recs[i] = toRecord(t)
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

// Append prepends the record and persists the collection.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction{t}, s.items...)
	if err := s.persist(); err != nil {
		s.items = s.items[1:]
		return err
	}
	return nil
}

// Remove deletes at most one matching record and persists.
func (s *Store) Remove(_ context.Context, owner string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id && t.Owner == owner {
			orig := s.items
			s.items = append(append([]core.Transaction(nil), s.items[:i]...), s.items[i+1:]...)
			if err := s.persist(); err != nil {
				s.items = orig
				return false, err
			}
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
