package core

import (
	"sort"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Totals is the balance projection over one ledger.
type Totals struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}

// Summary is the full dashboard read model for one owner. Derived on demand,
// never persisted.
type Summary struct {
	OwnerID           string
	Totals            Totals
	Level             string
	IncomesByCategory []CategoryAmount
	ExpenseByCategory []CategoryAmount
	TransactionCount  int
}

// LevelThresholds configure the display-only balance tiers. They must be
// monotonic: Low < High.
type LevelThresholds struct {
	Low  Money
	High Money
}

// Level labels and default thresholds, in rupiah.
const (
	LevelRookie  = "Money Rookie"
	LevelWarrior = "Budget Warrior"
	LevelPro     = "Tabungan Pro"
)

// DefaultLevelThresholds places the tier cuts at Rp1,000,000 and Rp5,000,000.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{
		Low:  Money{Cents: 1_000_000 * 100},
		High: Money{Cents: 5_000_000 * 100},
	}
}

// ComputeTotals sums both sequences. Empty sequences sum to zero.
func ComputeTotals(l Ledger) Totals {
	var t Totals
	for _, r := range l.Incomes {
		t.TotalIncome.Cents += r.Amount.Cents
	}
	for _, r := range l.Expenses {
		t.TotalExpense.Cents += r.Amount.Cents
	}
	t.Balance.Cents = t.TotalIncome.Cents - t.TotalExpense.Cents
	return t
}

// ComputeCategoryBreakdown groups the named sequence by exact category string
// and sums amounts per group. Categories never present in a record never
// appear in the output.
func ComputeCategoryBreakdown(l Ledger, kind Kind) map[string]Money {
	out := make(map[string]Money)
	for _, r := range l.Records(kind) {
		sum := out[r.Category]
		sum.Cents += r.Amount.Cents
		out[r.Category] = sum
	}
	return out
}

// SortedBreakdown flattens a breakdown into a deterministic slice, largest
// amount first, name as tie-break.
func SortedBreakdown(breakdown map[string]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(breakdown))
	for name, amount := range breakdown {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ClassifyLevel maps a balance onto one of three display tiers. The labels
// are cosmetic; the only invariant is monotonicity in the balance.
func ClassifyLevel(balance Money, t LevelThresholds) string {
	switch {
	case balance.Cents < t.Low.Cents:
		return LevelRookie
	case balance.Cents < t.High.Cents:
		return LevelWarrior
	default:
		return LevelPro
	}
}

// ComputeSummary builds the full dashboard projection for one ledger.
func ComputeSummary(l Ledger, thresholds LevelThresholds) Summary {
	totals := ComputeTotals(l)
	return Summary{
		OwnerID:           l.OwnerID,
		Totals:            totals,
		Level:             ClassifyLevel(totals.Balance, thresholds),
		IncomesByCategory: SortedBreakdown(ComputeCategoryBreakdown(l, KindIncome)),
		ExpenseByCategory: SortedBreakdown(ComputeCategoryBreakdown(l, KindExpense)),
		TransactionCount:  len(l.Incomes) + len(l.Expenses),
	}
}

// LastDaysExpenseSeries returns per-day expense totals for the `days` days
// ending at `end` (inclusive), oldest first. Days without expenses are zero.
// The advisory prediction consumes this series.
func LastDaysExpenseSeries(l Ledger, end time.Time, days int) []Money {
	endDay := truncateToDay(end)
	series := make([]Money, days)
	for _, r := range l.Expenses {
		offset := int(endDay.Sub(truncateToDay(r.OccurredAt)).Hours() / 24)
		if offset < 0 || offset >= days {
			continue
		}
		series[days-1-offset].Cents += r.Amount.Cents
	}
	return series
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
