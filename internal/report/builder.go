// Package report derives the chart series, totals and savings balance shown
// alongside the expense list.
package report

import (
	"context"
	"fmt"
	"sort"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

// DayLabelLayout renders a day as abbreviated month and day, e.g. "Jan 02".
const DayLabelLayout = "Jan 02"

// Store is the read side of the record store the builder consumes.
type Store interface {
	ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error)
	SumExpensesByDay(ctx context.Context, f core.ExpenseFilter) ([]core.DayTotal, error)
	SumExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (map[string]decimal.Decimal, error)
	ListSavings(ctx context.Context) ([]core.Saving, error)
}

type Report struct {
	Expenses       []core.Expense
	ExpenseTotal   decimal.Decimal
	DailySeries    []core.SeriesPoint
	CategorySeries []core.SeriesPoint
	Savings        []core.Saving // full history, never date filtered
	SavingsBalance decimal.Decimal
}

type Builder struct {
	store Store
}

func NewBuilder(store Store) *Builder {
	return &Builder{store: store}
}

// Build recomputes every series from current rows.
func (b *Builder) Build(ctx context.Context, f core.ExpenseFilter) (Report, error) {
	expenses, err := b.store.ListExpenses(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("list expenses: %w", err)
	}
	days, err := b.store.SumExpensesByDay(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("daily series: %w", err)
	}
	byCategory, err := b.store.SumExpensesByCategory(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("category series: %w", err)
	}
	savings, err := b.store.ListSavings(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list savings: %w", err)
	}

	return Report{
		Expenses:       expenses,
		ExpenseTotal:   ExpenseTotal(expenses),
		DailySeries:    DailySeries(days),
		CategorySeries: CategorySeries(byCategory),
		Savings:        savings,
		SavingsBalance: SavingsBalance(savings),
	}, nil
}

func ExpenseTotal(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return core.Round2(total)
}

// DailySeries keeps the ascending order of the grouped days.
func DailySeries(days []core.DayTotal) []core.SeriesPoint {
	out := make([]core.SeriesPoint, 0, len(days))
	for _, d := range days {
		out = append(out, core.SeriesPoint{Label: d.Day.Format(DayLabelLayout), Amount: core.Round2(d.Total)})
	}
	return out
}

// CategorySeries orders categories by name so charts render stably.
func CategorySeries(totals map[string]decimal.Decimal) []core.SeriesPoint {
	out := make([]core.SeriesPoint, 0, len(totals))
	for name, total := range totals {
		out = append(out, core.SeriesPoint{Label: name, Amount: core.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// SavingsBalance adds deposits and subtracts withdrawals.
func SavingsBalance(savings []core.Saving) decimal.Decimal {
	balance := decimal.Zero
	for _, s := range savings {
		balance = balance.Add(s.Signed())
	}
	return balance
}

// Labels and Values split a series for the chart script.
func Labels(series []core.SeriesPoint) []string {
	out := make([]string, len(series))
	for i, p := range series {
		out[i] = p.Label
	}
	return out
}

func Values(series []core.SeriesPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Amount.InexactFloat64()
	}
	return out
}
