package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"moneta/internal/core"
	"moneta/internal/identity"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "moneta.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	records := []core.Transaction{
		{ID: 10, Owner: "ada", Description: "Coffee", Amount: core.Money{Cents: 500}, Kind: core.Expense, Category: "Food", Date: "01/02/2026"},
		{ID: 11, Owner: "ada", Description: "Paycheck", Amount: core.Money{Cents: 200000}, Kind: core.Income, Date: "02/02/2026"},
		{ID: 12, Owner: "ben", Description: "Bus", Amount: core.Money{Cents: 250}, Kind: core.Expense, Category: "Transport", Date: "02/02/2026"},
	}
	for _, r := range records {
		if err := repo.Append(ctx, r); err != nil {
			t.Fatalf("append %d: %v", r.ID, err)
		}
	}

	got, err := repo.ListByOwner(ctx, "ada")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for ada, got %d", len(got))
	}
	// Monotonic ids, DESC order: newest first.
	if got[0] != records[1] || got[1] != records[0] {
		t.Fatalf("order or fields lost: %+v", got)
	}
}

func TestRemoveScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	repo.Append(ctx, core.Transaction{ID: 1, Owner: "ada", Amount: core.Money{Cents: 100}, Kind: core.Expense})

	if removed, _ := repo.Remove(ctx, "ben", 1); removed {
		t.Fatalf("cross-owner remove must be a no-op")
	}
	if removed, err := repo.Remove(ctx, "ada", 1); err != nil || !removed {
		t.Fatalf("remove: (%v, %v)", removed, err)
	}
	if removed, err := repo.Remove(ctx, "ada", 1); err != nil || removed {
		t.Fatalf("repeat remove must return false: (%v, %v)", removed, err)
	}
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	u := identity.User{Username: "ada", PasswordHash: []byte("not-a-real-hash")}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateUser(ctx, u); !errors.Is(err, identity.ErrDuplicateUser) {
		t.Fatalf("duplicate user: %v", err)
	}

	got, err := repo.GetUser(ctx, "ada")
	if err != nil || got.Username != "ada" || got.RewardClaimed {
		t.Fatalf("get: (%+v, %v)", got, err)
	}
	if _, err := repo.GetUser(ctx, "nobody"); !errors.Is(err, identity.ErrUnknownUser) {
		t.Fatalf("unknown user: %v", err)
	}

	if err := repo.SetRewardClaimed(ctx, "ada", true); err != nil {
		t.Fatalf("set claimed: %v", err)
	}
	got, _ = repo.GetUser(ctx, "ada")
	if !got.RewardClaimed {
		t.Fatalf("reward flag must persist")
	}
	if err := repo.SetRewardClaimed(ctx, "nobody", true); !errors.Is(err, identity.ErrUnknownUser) {
		t.Fatalf("set claimed on unknown user: %v", err)
	}
}
