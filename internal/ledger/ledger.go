// Package ledger implements the transaction ledger engine: append,
// delete, and derived aggregates over one owner's records.
package ledger

import (
	"context"
	"fmt"
	"time"

	"moneta/internal/core"
)

// DefaultGoalCents is the net-balance target at which progress reaches
// 100% and the reward state activates (2000.00).
const DefaultGoalCents int64 = 200000

// Config scopes a Ledger instance to one owner and one goal threshold.
// The five upstream variants differed only in these knobs.
type Config struct {
	Owner     string
	GoalCents int64
}

// Ledger is an owner-scoped view over a backing store. It owns no
// state of its own beyond configuration: every operation is a
// synchronous read-modify-write against the store.
type Ledger struct {
	store Store
	ids   IDGenerator
	cfg   Config
	now   func() time.Time
}

// New constructs a ledger with injected collaborators. A nil generator
// falls back to the collision-checked time source; a zero goal falls
// back to DefaultGoalCents.
func New(store Store, ids IDGenerator, cfg Config) *Ledger {
	if ids == nil {
		ids = NewTimeIDGenerator()
	}
	if cfg.GoalCents == 0 {
		cfg.GoalCents = DefaultGoalCents
	}
	return &Ledger{store: store, ids: ids, cfg: cfg, now: time.Now}
}

// Owner returns the opaque user key this ledger is scoped to.
func (l *Ledger) Owner() string { return l.cfg.Owner }

// GoalCents returns the configured goal threshold.
func (l *Ledger) GoalCents() int64 { return l.cfg.GoalCents }

// Add validates the input, assigns a fresh id, prepends the record to
// the owner's collection and persists it. Empty description, category
// and date are accepted as-is; a missing date gets today's display
// date. Rejections are structured errors, never coerced records.
func (l *Ledger) Add(ctx context.Context, desc string, amount core.Money, kind core.Kind, category, date string) (core.Transaction, error) {
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", core.ErrInvalidKind)
	}
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	if date == "" {
		date = l.now().Format("02/01/2006")
	}
	t := core.Transaction{
		ID:          l.ids.Next(),
		Owner:       l.cfg.Owner,
		Description: desc,
		Amount:      amount,
		Kind:        kind,
		Category:    category,
		Date:        date,
	}
	if err := l.store.Append(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return t, nil
}

// Remove deletes the record with the given id if it belongs to this
// owner. Removing an absent id is a no-op returning false; callers use
// the bool to decide whether to re-render.
func (l *Ledger) Remove(ctx context.Context, id int64) (bool, error) {
	removed, err := l.store.Remove(ctx, l.cfg.Owner, id)
	if err != nil {
		return false, fmt.Errorf("remove transaction %d: %w", id, err)
	}
	return removed, nil
}

// List returns the owner's records, most recent first.
func (l *Ledger) List(ctx context.Context) ([]core.Transaction, error) {
	records, err := l.store.ListByOwner(ctx, l.cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

// Aggregate recomputes the derived totals from scratch in one pass.
func (l *Ledger) Aggregate(ctx context.Context) (core.Snapshot, error) {
	records, err := l.store.ListByOwner(ctx, l.cfg.Owner)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("aggregate: %w", err)
	}
	return core.Aggregate(records, l.cfg.GoalCents), nil
}

// GoalReached reports whether the snapshot meets this ledger's goal.
func (l *Ledger) GoalReached(snap core.Snapshot) bool {
	return core.GoalReached(snap, l.cfg.GoalCents)
}
