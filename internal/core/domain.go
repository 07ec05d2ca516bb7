package core

import "errors"

const (
	// Income amounts add to the income total.
	Income Kind = "income"
	// Expense amounts add to the expense total and the category breakdown.
	Expense Kind = "expense"
)

type (
	// Kind tells which aggregate bucket a transaction contributes to.
	// The amount itself is always non-negative; direction lives here.
	Kind string

	// Money is an amount in cents. All arithmetic happens on cents to
	// avoid floating-point drift; floats appear only at the display and
	// persistence boundaries.
	Money struct {
		Cents int64
	}

	// Transaction is the atomic unit of the ledger. Records are never
	// mutated in place: they are created by Add and live unchanged until
	// removed.
	Transaction struct {
		ID          int64
		Owner       string // opaque user key, compared by equality
		Description string // free text, may be empty
		Amount      Money
		Kind        Kind
		Category    string // expense-side grouping label, ignored for income
		Date        string // display-formatted, never used in arithmetic
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")
)

// Valid reports whether k is one of the two recognized kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the invariants a stored record must satisfy. Empty
// description and category are accepted; only amount sign and kind are
// constrained.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
