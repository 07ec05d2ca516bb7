// Package mirror defines the outbound ports for mirroring a ledger to
// an external spreadsheet. The mirror is one-way: aggregates always
// come from the ledger, never read back from the sheet.
package mirror

import (
	"context"

	"moneta/internal/core"
)

type (
	// RecordAppender appends a single new record to the mirror.
	RecordAppender interface {
		AppendRecord(ctx context.Context, t core.Transaction) error
	}

	// Reconciler rewrites one owner's mirrored rows from the
	// authoritative record list, newest first.
	Reconciler interface {
		ReplaceAll(ctx context.Context, owner string, records []core.Transaction) error
	}

	// Mirror is the full contract the sync worker drives.
	Mirror interface {
		RecordAppender
		Reconciler
	}
)
