package ledger

import (
	"context"

	"moneta/internal/core"
)

// Ports for backing stores. A store holds the full collection across
// owners; the engine scopes every operation to one owner.
type (
	RecordAppender interface {
		// Append prepends the record to the stored collection and
		// persists it. Most-recent-first is the display convention.
		Append(ctx context.Context, t core.Transaction) error
	}

	RecordRemover interface {
		// Remove deletes at most one record matching owner and id.
		// A missing id is a no-op returning false, never an error.
		Remove(ctx context.Context, owner string, id int64) (bool, error)
	}

	RecordLister interface {
		// ListByOwner returns the owner's records in insertion order,
		// most recent first.
		ListByOwner(ctx context.Context, owner string) ([]core.Transaction, error)
	}

	// Store is the full backing-store contract used by the factory.
	Store interface {
		RecordAppender
		RecordRemover
		RecordLister
	}
)
