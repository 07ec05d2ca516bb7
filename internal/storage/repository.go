// Package storage provides the SQLite backing store for the ledger and
// the user collection.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"moneta/internal/core"
	"moneta/internal/identity"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applySchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.RecordAppender. Monotonic ids make
// ORDER BY id DESC reproduce prepend (most-recent-first) order, so no
// position column is needed.
func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner, description, amount_cents, kind, category, display_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Description, t.Amount.Cents, string(t.Kind), t.Category, t.Date)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"owner", t.Owner,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents)
	return nil
}

// Remove implements ledger.RecordRemover.
func (r *SQLiteRepository) Remove(ctx context.Context, owner string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListByOwner implements ledger.RecordLister.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, description, amount_cents, kind, category, display_date
		 FROM transactions WHERE owner = ? ORDER BY id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind string
		if err := rows.Scan(&t.ID, &t.Owner, &t.Description, &t.Amount.Cents, &kind, &t.Category, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateUser implements identity.UserStore.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u identity.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, reward_claimed) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, boolToInt(u.RewardClaimed))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return identity.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser implements identity.UserStore.
func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (identity.User, error) {
	var u identity.User
	var claimed int
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, reward_claimed FROM users WHERE username = ?`,
		username).Scan(&u.Username, &u.PasswordHash, &claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.User{}, identity.ErrUnknownUser
	}
	if err != nil {
		return identity.User{}, fmt.Errorf("query user: %w", err)
	}
	u.RewardClaimed = claimed != 0
	return u, nil
}

// SetRewardClaimed implements identity.UserStore.
func (r *SQLiteRepository) SetRewardClaimed(ctx context.Context, username string, claimed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reward_claimed = ? WHERE username = ?`,
		boolToInt(claimed), username)
	if err != nil {
		return fmt.Errorf("update reward flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrUnknownUser
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
