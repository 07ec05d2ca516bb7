package core

import "math"

// Snapshot holds the derived totals for one owner's ledger at a point
// in time. It is recomputed from scratch on every read and never
// persisted.
type Snapshot struct {
	TotalIncome  Money
	TotalExpense Money
	NetBalance   Money // income - expense, may be negative
	// ByCategory sums expense amounts per category label. Iteration
	// order carries no meaning; consumers sort for display.
	ByCategory map[string]Money
	// GoalProgress is floor(net/goal*100) clamped to [0, 100].
	GoalProgress int
}

// Aggregate folds a record list into a Snapshot in a single pass.
// Summation is commutative, so record order does not affect the result.
// goalCents at or below zero disables progress tracking (always 0).
func Aggregate(records []Transaction, goalCents int64) Snapshot {
	snap := Snapshot{ByCategory: make(map[string]Money)}
	for _, t := range records {
		switch t.Kind {
		case Income:
			snap.TotalIncome.Cents += t.Amount.Cents
		default:
			snap.TotalExpense.Cents += t.Amount.Cents
			bucket := snap.ByCategory[t.Category]
			bucket.Cents += t.Amount.Cents
			snap.ByCategory[t.Category] = bucket
		}
	}
	snap.NetBalance.Cents = snap.TotalIncome.Cents - snap.TotalExpense.Cents
	snap.GoalProgress = goalProgress(snap.NetBalance.Cents, goalCents)
	return snap
}

// GoalReached reports whether the net balance has met the goal
// threshold. The persistent reward-claimed flag belongs to the profile
// collaborator, not here.
func GoalReached(snap Snapshot, goalCents int64) bool {
	return goalCents > 0 && snap.NetBalance.Cents >= goalCents
}

func goalProgress(netCents, goalCents int64) int {
	if goalCents <= 0 || netCents <= 0 {
		return 0
	}
	if netCents >= goalCents {
		return 100
	}
	// Both positive, net < goal: plain integer division floors.
	// net*100 can exceed int64 for very large balances; divide first
	// in that range. goal > net there, so goal/100 is never zero.
	if netCents > math.MaxInt64/100 {
		p := int(netCents / (goalCents / 100))
		// Flooring goal/100 can nudge the quotient to 100 while net
		// is still short of the goal.
		if p > 99 {
			p = 99
		}
		return p
	}
	return int(netCents * 100 / goalCents)
}
