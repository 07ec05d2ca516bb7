package core

import "testing"

func TestKindValid(t *testing.T) {
	if !Income.Valid() || !Expense.Valid() {
		t.Fatalf("expected income and expense to be valid")
	}
	if Kind("transfer").Valid() {
		t.Fatalf("expected unknown kind to be invalid")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: 1, Owner: "ada", Amount: Money{Cents: 500}, Kind: Expense, Category: "Food"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Empty description and category are accepted behavior.
	bare := Transaction{ID: 2, Kind: Income}
	if err := bare.Validate(); err != nil {
		t.Fatalf("expected bare record ok, got %v", err)
	}

	bads := []Transaction{
		{ID: 3, Amount: Money{Cents: -1}, Kind: Expense},
		{ID: 4, Amount: Money{Cents: 1}, Kind: "loan"},
		{ID: 5, Amount: Money{Cents: 1}},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
