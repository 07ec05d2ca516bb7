// Package worker drives the one-way mirror: it consumes ledger change
// messages and keeps each owner's spreadsheet tab in step with the
// backing store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"moneta/internal/amqp"
	"moneta/internal/ledger"
	"moneta/internal/mirror"
)

type SyncWorker struct {
	store  ledger.RecordLister
	mirror mirror.Mirror

	mu     sync.Mutex
	owners map[string]struct{} // owners seen since the last reconcile
}

func NewSyncWorker(store ledger.RecordLister, m mirror.Mirror) *SyncWorker {
	return &SyncWorker{
		store:  store,
		mirror: m,
		owners: make(map[string]struct{}),
	}
}

// HandleChangeMessage processes one change message. Creates append the
// single new record; deletes trigger a full reconcile of the owner's
// tab, since the mirror has no per-row identity to delete by.
func (w *SyncWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"owner", msg.Owner, "id", msg.ID, "op", msg.Op)

	w.noteOwner(msg.Owner)

	switch msg.Op {
	case amqp.OpCreate:
		return w.appendRecord(ctx, msg)
	case amqp.OpDelete:
		return w.reconcileOwner(ctx, msg.Owner)
	default:
		// Unknown ops are dropped, not requeued forever.
		slog.WarnContext(ctx, "Unknown change op, dropping", "op", msg.Op)
		return nil
	}
}

func (w *SyncWorker) appendRecord(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	records, err := w.store.ListByOwner(ctx, msg.Owner)
	if err != nil {
		return fmt.Errorf("list records for %s: %w", msg.Owner, err)
	}
	for _, t := range records {
		if t.ID == msg.ID {
			if err := w.mirror.AppendRecord(ctx, t); err != nil {
				return fmt.Errorf("mirror append %d: %w", msg.ID, err)
			}
			return nil
		}
	}
	// Record vanished between message and processing: the owner's
	// reconcile will sort the tab out.
	slog.WarnContext(ctx, "Record missing at sync time, deferring to reconcile",
		"owner", msg.Owner, "id", msg.ID)
	return w.reconcileOwner(ctx, msg.Owner)
}

func (w *SyncWorker) reconcileOwner(ctx context.Context, owner string) error {
	records, err := w.store.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("list records for %s: %w", owner, err)
	}
	if err := w.mirror.ReplaceAll(ctx, owner, records); err != nil {
		return fmt.Errorf("reconcile %s: %w", owner, err)
	}
	return nil
}

func (w *SyncWorker) noteOwner(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.owners[owner] = struct{}{}
}

func (w *SyncWorker) takeOwners() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.owners))
	for o := range w.owners {
		out = append(out, o)
	}
	w.owners = make(map[string]struct{})
	return out
}

// RunReconcileLoop periodically reconciles every owner that changed
// since the last pass, catching anything the append path missed.
func (w *SyncWorker) RunReconcileLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, owner := range w.takeOwners() {
				if err := w.reconcileOwner(ctx, owner); err != nil {
					slog.ErrorContext(ctx, "Periodic reconcile failed",
						"owner", owner, "error", err)
					// Keep the owner queued for the next pass.
					w.noteOwner(owner)
				}
			}
		}
	}
}
