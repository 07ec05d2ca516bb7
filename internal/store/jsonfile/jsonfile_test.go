package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"moneta/internal/core"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := Open(path, "guest")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	records := []core.Transaction{
		{ID: 1, Owner: "ada", Description: "Coffee", Amount: core.Money{Cents: 500}, Kind: core.Expense, Category: "Food", Date: "01/02/2026"},
		{ID: 2, Owner: "ada", Description: "Paycheck, net", Amount: core.Money{Cents: 200000}, Kind: core.Income, Date: "02/02/2026"},
		{ID: 3, Owner: "ada", Description: "", Amount: core.Money{Cents: 0}, Kind: core.Expense, Category: "Misc", Date: "03/02/2026"},
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append %d: %v", r.ID, err)
		}
	}

	reloaded, err := Open(path, "guest")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, _ := reloaded.ListByOwner(ctx, "ada")
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	// Prepend order: last appended comes back first.
	for i, want := range []core.Transaction{records[2], records[1], records[0]} {
		if got[i] != want {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want)
		}
	}
}

func TestEmptyCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)
	if got, err := s.ListByOwner(ctx, "guest"); err != nil || len(got) != 0 {
		t.Fatalf("fresh store: (%v, %v)", got, err)
	}
	reloaded, err := Open(path, "guest")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _ := reloaded.ListByOwner(ctx, "guest"); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestCorruptPayloadLoadsEmpty(t *testing.T) {
	for _, payload := range []string{"not json", `{"a":1}`, `42`, `"hi"`} {
		path := filepath.Join(t.TempDir(), "ledger.json")
		if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
			t.Fatalf("seed: %v", err)
		}
		s, err := Open(path, "guest")
		if err != nil {
			t.Fatalf("open must not fail on corrupt data: %v", err)
		}
		if got, _ := s.ListByOwner(context.Background(), "guest"); len(got) != 0 {
			t.Fatalf("payload %q: expected empty ledger, got %v", payload, got)
		}
	}
}

func TestMissingOwnerGetsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	payload := `[{"id":7,"desc":"Lunch","amount":9.5,"type":"expense","category":"Food","date":"1/2/2026"}]`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(path, "guest")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := s.ListByOwner(context.Background(), "guest")
	if len(got) != 1 || got[0].Amount.Cents != 950 || got[0].Owner != "guest" {
		t.Fatalf("single-user record not attributed to default owner: %+v", got)
	}
}

func TestInvalidRecordsDroppedAtLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	// A hand-edited file: record 2 carries a negative amount, which
	// Append would have rejected.
	payload := `[
		{"id":1,"owner":"ada","desc":"Coffee","amount":5,"type":"expense","category":"Food","date":"1/2/2026"},
		{"id":2,"owner":"ada","desc":"Oops","amount":-3.5,"type":"expense","category":"Food","date":"1/2/2026"},
		{"id":3,"owner":"ada","desc":"Refund","amount":12,"type":"income","date":"2/2/2026"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(path, "guest")
	if err != nil {
		t.Fatalf("open must not fail on invalid records: %v", err)
	}
	got, _ := s.ListByOwner(context.Background(), "ada")
	if len(got) != 2 {
		t.Fatalf("expected 2 valid records, got %d: %+v", len(got), got)
	}
	for _, r := range got {
		if r.Amount.Cents < 0 {
			t.Fatalf("negative amount survived load: %+v", r)
		}
		if r.ID == 2 {
			t.Fatalf("invalid record 2 survived load: %+v", r)
		}
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)
	s.Append(ctx, core.Transaction{ID: 1, Owner: "ada", Amount: core.Money{Cents: 100}, Kind: core.Expense})
	s.Append(ctx, core.Transaction{ID: 2, Owner: "ada", Amount: core.Money{Cents: 200}, Kind: core.Income})

	if removed, err := s.Remove(ctx, "ada", 1); err != nil || !removed {
		t.Fatalf("remove: (%v, %v)", removed, err)
	}
	if removed, _ := s.Remove(ctx, "ada", 1); removed {
		t.Fatalf("second remove must return false")
	}
	// Deletion persisted across reopen.
	reloaded, _ := Open(path, "guest")
	got, _ := reloaded.ListByOwner(ctx, "ada")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only record 2 after reload, got %+v", got)
	}
}
