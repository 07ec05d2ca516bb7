// Package backend selects and wires the persistence layer at startup.
package backend

import (
	"context"

	"moneta/internal/identity"
	"moneta/internal/ledger"
)

// CleanupFunc releases the backend's resources.
type CleanupFunc func() error

// Result bundles the stores a backend provides. Cleanup may be nil.
type Result struct {
	Records ledger.Store
	Users   identity.UserStore
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// jsonfile specific
	LedgerFilePath string
	DefaultOwner   string

	// sqlite specific
	SQLiteDBPath string
}

type Type string

const (
	MemoryBackend   Type = "memory"
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, JSONFileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
