package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

const expenseColumns = "id, description, amount, category, date"

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO expense (description, amount, category, date) VALUES (?, ?, ?, ?)`,
		e.Description, toReal(e.Amount), e.Category, formatTime(e.Date))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read expense id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount", e.Amount.String(),
		"category", e.Category,
		"date", e.Date.Format(core.DateLayout))
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expense WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM expense WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

// ListExpenses returns the filtered expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	where, args := expenseWhere(f)
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expense`+where+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumExpensesByCategory groups the filtered expenses by category name.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (map[string]decimal.Decimal, error) {
	where, args := expenseWhere(f)
	rows, err := r.q.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM expense`+where+` GROUP BY category`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			name  string
			total sql.NullFloat64
		)
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out[name] = fromReal(total.Float64)
	}
	return out, rows.Err()
}

// SumExpensesByDay groups the filtered expenses by calendar day, ascending.
func (r *SQLiteRepository) SumExpensesByDay(ctx context.Context, f core.ExpenseFilter) ([]core.DayTotal, error) {
	where, args := expenseWhere(f)
	rows, err := r.q.QueryContext(ctx,
		`SELECT date(date) AS day, SUM(amount) FROM expense`+where+` GROUP BY day ORDER BY day`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by day: %w", err)
	}
	defer rows.Close()

	var out []core.DayTotal
	for rows.Next() {
		var (
			day   string
			total sql.NullFloat64
		)
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("scan day sum: %w", err)
		}
		t, err := time.Parse(core.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, core.DayTotal{Day: t, Total: fromReal(total.Float64)})
	}
	return out, rows.Err()
}

// CountExpensesForCategory counts expenses referencing the category name.
func (r *SQLiteRepository) CountExpensesForCategory(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM expense WHERE category = ?`, name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses for %q: %w", name, err)
	}
	return n, nil
}

// ExpenseCategoryNames returns the distinct category names referenced by any expense.
func (r *SQLiteRepository) ExpenseCategoryNames(ctx context.Context) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT category FROM expense`)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan expense category: %w", err)
		}
		out[name] = true
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e      core.Expense
		amount float64
		date   storedTime
	)
	if err := s.Scan(&e.ID, &e.Description, &amount, &e.Category, &date); err != nil {
		return core.Expense{}, err
	}
	e.Amount = fromReal(amount)
	e.Date = date.Time
	return e, nil
}

// expenseWhere compares calendar days so both bounds include the whole day.
func expenseWhere(f core.ExpenseFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Range.Start != nil {
		clauses = append(clauses, "date(date) >= ?")
		args = append(args, f.Range.Start.Format(core.DateLayout))
	}
	if f.Range.End != nil {
		clauses = append(clauses, "date(date) <= ?")
		args = append(args, f.Range.End.Format(core.DateLayout))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
