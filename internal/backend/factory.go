package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"moneta/internal/identity"
	"moneta/internal/storage"
	"moneta/internal/store/jsonfile"
	"moneta/internal/store/memory"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case JSONFileBackend:
		return f.createJSONFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Records: memory.New(),
		Users:   identity.NewMemoryUserStore(),
	}, nil
}

func (f *DefaultFactory) createJSONFileBackend(config Config) (*Result, error) {
	records, err := jsonfile.Open(config.LedgerFilePath, config.DefaultOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}

	// Users live beside the ledger file.
	usersPath := filepath.Join(filepath.Dir(config.LedgerFilePath), "users.json")
	users, err := jsonfile.OpenUsers(usersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}

	f.logger.Info("Initialized jsonfile backend",
		"ledger_file", config.LedgerFilePath,
		"users_file", usersPath)

	return &Result{
		Records: records,
		Users:   users,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Records: repo,
		Users:   repo,
		Cleanup: repo.Close,
	}, nil
}

// FromAppConfig maps the application's backend settings onto a
// backend Config.
func FromAppConfig(dataBackend, ledgerFilePath, defaultOwner, sqlitePath string) (Config, error) {
	t := Type(dataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", dataBackend)
	}
	return Config{
		Type:           t,
		LedgerFilePath: ledgerFilePath,
		DefaultOwner:   defaultOwner,
		SQLiteDBPath:   sqlitePath,
	}, nil
}
