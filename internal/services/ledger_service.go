// Package services orchestrates ledger mutations with their fan-out:
// persist first, then best-effort publish and broadcast.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"moneta/internal/amqp"
	"moneta/internal/core"
	"moneta/internal/ledger"
)

// ChangePublisher pushes durable change messages for the mirror worker.
type ChangePublisher interface {
	PublishChange(ctx context.Context, owner string, id int64, op string) error
}

// SnapshotBroadcaster pushes fresh totals to connected dashboards.
type SnapshotBroadcaster interface {
	BroadcastSnapshot(owner string, snap core.Snapshot)
}

// LedgerService scopes the shared backing store into per-owner ledgers
// and wires every successful mutation to the change pipeline. Both
// collaborators are optional: a nil publisher or broadcaster simply
// skips that leg, and neither ever fails a request that already
// persisted.
type LedgerService struct {
	store       ledger.Store
	ids         ledger.IDGenerator
	goalCents   int64
	publisher   ChangePublisher
	broadcaster SnapshotBroadcaster
}

func NewLedgerService(store ledger.Store, ids ledger.IDGenerator, goalCents int64, publisher ChangePublisher, broadcaster SnapshotBroadcaster) *LedgerService {
	if ids == nil {
		ids = ledger.NewTimeIDGenerator()
	}
	if goalCents == 0 {
		goalCents = ledger.DefaultGoalCents
	}
	return &LedgerService{
		store:       store,
		ids:         ids,
		goalCents:   goalCents,
		publisher:   publisher,
		broadcaster: broadcaster,
	}
}

// ForOwner returns the engine scoped to one owner.
func (s *LedgerService) ForOwner(owner string) *ledger.Ledger {
	return ledger.New(s.store, s.ids, ledger.Config{Owner: owner, GoalCents: s.goalCents})
}

// AddTransaction persists a new record and fans the change out.
func (s *LedgerService) AddTransaction(ctx context.Context, owner, desc string, amount core.Money, kind core.Kind, category, date string) (core.Transaction, error) {
	l := s.ForOwner(owner)
	t, err := l.Add(ctx, desc, amount, kind, category, date)
	if err != nil {
		return core.Transaction{}, err
	}
	s.fanOut(ctx, l, owner, t.ID, amqp.OpCreate)
	return t, nil
}

// RemoveTransaction deletes a record if present. The fan-out only runs
// when something actually changed.
func (s *LedgerService) RemoveTransaction(ctx context.Context, owner string, id int64) (bool, error) {
	l := s.ForOwner(owner)
	removed, err := l.Remove(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.fanOut(ctx, l, owner, id, amqp.OpDelete)
	return true, nil
}

// Snapshot recomputes the owner's aggregates.
func (s *LedgerService) Snapshot(ctx context.Context, owner string) (core.Snapshot, error) {
	return s.ForOwner(owner).Aggregate(ctx)
}

// List returns the owner's records, most recent first.
func (s *LedgerService) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	return s.ForOwner(owner).List(ctx)
}

// GoalReached reports whether the snapshot meets the configured goal.
func (s *LedgerService) GoalReached(snap core.Snapshot) bool {
	return core.GoalReached(snap, s.goalCents)
}

func (s *LedgerService) fanOut(ctx context.Context, l *ledger.Ledger, owner string, id int64, op string) {
	if s.publisher != nil {
		if err := s.publisher.PublishChange(ctx, owner, id, op); err != nil {
			// The record is already persisted locally; the mirror
			// catches up on the next reconcile.
			slog.ErrorContext(ctx, "Failed to publish change message",
				"owner", owner, "id", id, "op", op, "error", err)
		}
	}
	if s.broadcaster != nil {
		snap, err := l.Aggregate(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to compute snapshot for broadcast",
				"owner", owner, "error", err)
			return
		}
		s.broadcaster.BroadcastSnapshot(owner, snap)
	}
}

// Close releases the publisher connection if one was wired.
func (s *LedgerService) Close() error {
	type closer interface{ Close() error }
	if c, ok := s.publisher.(closer); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
