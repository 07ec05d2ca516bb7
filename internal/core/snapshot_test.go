package core

import (
	"math"
	"testing"
)

const goal = 200000 // 2000.00 in cents

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil, goal)
	if snap.TotalIncome.Cents != 0 || snap.TotalExpense.Cents != 0 || snap.NetBalance.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", snap)
	}
	if len(snap.ByCategory) != 0 {
		t.Fatalf("expected empty category map, got %v", snap.ByCategory)
	}
	if snap.GoalProgress != 0 {
		t.Fatalf("expected 0%% progress, got %d", snap.GoalProgress)
	}
}

func TestAggregateScenario(t *testing.T) {
	// Coffee 5.00 expense, then Paycheck 2000.00 income.
	records := []Transaction{
		{ID: 2, Description: "Paycheck", Amount: Money{Cents: 200000}, Kind: Income},
		{ID: 1, Description: "Coffee", Amount: Money{Cents: 500}, Kind: Expense, Category: "Food"},
	}
	snap := Aggregate(records, goal)
	if snap.TotalIncome.Cents != 200000 {
		t.Fatalf("income: got %d", snap.TotalIncome.Cents)
	}
	if snap.TotalExpense.Cents != 500 {
		t.Fatalf("expense: got %d", snap.TotalExpense.Cents)
	}
	if snap.NetBalance.Cents != 199500 {
		t.Fatalf("net: got %d", snap.NetBalance.Cents)
	}
	if snap.GoalProgress != 99 {
		t.Fatalf("progress: got %d, want 99", snap.GoalProgress)
	}
	if got := snap.ByCategory["Food"].Cents; got != 500 {
		t.Fatalf("Food bucket: got %d", got)
	}
	if GoalReached(snap, goal) {
		t.Fatalf("goal not reached at 1995.00")
	}
}

func TestAggregateOrderIndependence(t *testing.T) {
	records := []Transaction{
		{ID: 1, Amount: Money{Cents: 100}, Kind: Income},
		{ID: 2, Amount: Money{Cents: 30}, Kind: Expense, Category: "A"},
		{ID: 3, Amount: Money{Cents: 70}, Kind: Expense, Category: "A"},
		{ID: 4, Amount: Money{Cents: 50}, Kind: Expense, Category: "B"},
	}
	reversed := make([]Transaction, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	a, b := Aggregate(records, goal), Aggregate(reversed, goal)
	if a.NetBalance != b.NetBalance || a.TotalIncome != b.TotalIncome || a.TotalExpense != b.TotalExpense {
		t.Fatalf("totals differ by order: %+v vs %+v", a, b)
	}
	if a.ByCategory["A"] != b.ByCategory["A"] || a.ByCategory["B"] != b.ByCategory["B"] {
		t.Fatalf("category sums differ by order")
	}
	// Partition property: income + expense covers every amount exactly once.
	var sum int64
	for _, r := range records {
		sum += r.Amount.Cents
	}
	if a.TotalIncome.Cents+a.TotalExpense.Cents != sum {
		t.Fatalf("partition broken: %d + %d != %d", a.TotalIncome.Cents, a.TotalExpense.Cents, sum)
	}
}

func TestGoalProgressClamps(t *testing.T) {
	cases := []struct {
		net  int64
		want int
	}{
		{-1_000_000, 0},
		{0, 0},
		{1, 0},
		{100000, 50},
		{199500, 99},
		{199999, 99},
		{200000, 100},
		{5_000_000, 100},
	}
	for _, tc := range cases {
		snap := Snapshot{NetBalance: Money{Cents: tc.net}}
		if got := goalProgress(snap.NetBalance.Cents, goal); got != tc.want {
			t.Fatalf("net %d: got %d, want %d", tc.net, got, tc.want)
		}
	}
}

func TestGoalProgressHugeBalances(t *testing.T) {
	// net*100 would overflow int64 here; progress must stay in [0, 100].
	cases := []struct {
		net, goal int64
		want      int
	}{
		{1_000_000_000_000_000_000, 2_000_000_000_000_000_000, 50},
		{math.MaxInt64 / 2, math.MaxInt64, 50},
		{math.MaxInt64 - 1, math.MaxInt64, 99},
		{math.MaxInt64, math.MaxInt64, 100},
	}
	for _, tc := range cases {
		got := goalProgress(tc.net, tc.goal)
		if got < 0 || got > 100 {
			t.Fatalf("net %d goal %d: %d out of range", tc.net, tc.goal, got)
		}
		if got != tc.want {
			t.Fatalf("net %d goal %d: got %d, want %d", tc.net, tc.goal, got, tc.want)
		}
	}
}

func TestGoalReachedAtThreshold(t *testing.T) {
	records := []Transaction{{ID: 1, Amount: Money{Cents: 200000}, Kind: Income}}
	snap := Aggregate(records, goal)
	if snap.GoalProgress != 100 {
		t.Fatalf("progress at threshold: got %d", snap.GoalProgress)
	}
	if !GoalReached(snap, goal) {
		t.Fatalf("goal should be reached at exactly the threshold")
	}
}
