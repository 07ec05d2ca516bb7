package export

import (
	"strings"
	"testing"

	"moneta/internal/core"
)

func TestWriteCSV(t *testing.T) {
	records := []core.Transaction{
		{ID: 2, Date: "02/02/2026", Description: "Paycheck, net of tax", Amount: core.Money{Cents: 200000}, Kind: core.Income},
		{ID: 1, Date: "01/02/2026", Description: "Coffee", Amount: core.Money{Cents: 500}, Kind: core.Expense, Category: "Food"},
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,Description,Amount,Type,Category" {
		t.Fatalf("header: %q", lines[0])
	}
	// A description with an embedded comma must be quoted.
	if lines[1] != `02/02/2026,"Paycheck, net of tax",2000.00,income,` {
		t.Fatalf("income row: %q", lines[1])
	}
	if lines[2] != "01/02/2026,Coffee,5.00,expense,Food" {
		t.Fatalf("expense row: %q", lines[2])
	}
}

func TestWriteCSVEmptyLedger(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimRight(sb.String(), "\n") != "Date,Description,Amount,Type,Category" {
		t.Fatalf("expected header only, got %q", sb.String())
	}
}
