package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/budget"
	"budgetbook/internal/core"
)

const categoryColumns = "id, name, budget_amount, is_active, created_at"

// ListCategories returns categories in creation order.
func (r *SQLiteRepository) ListCategories(ctx context.Context, activeOnly bool) ([]core.CategoryBudget, error) {
	query := `SELECT ` + categoryColumns + ` FROM category_budget`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	rows, err := r.q.QueryContext(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryBudget
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.CategoryBudget, error) {
	c, err := scanCategory(r.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM category_budget WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryBudget{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.CategoryBudget{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.CategoryBudget, error) {
	c, err := scanCategory(r.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM category_budget WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryBudget{}, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return core.CategoryBudget{}, fmt.Errorf("get category %q: %w", name, err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.CategoryBudget) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO category_budget (name, budget_amount, is_active, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, toReal(c.BudgetAmount), c.IsActive, formatTime(c.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, core.ErrCategoryExists)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read category id: %w", err)
	}
	c.ID = id
	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name, "budget", c.BudgetAmount.String())
	return nil
}

// UpdateCategory writes the mutable fields: budget amount and active flag.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.CategoryBudget) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE category_budget SET budget_amount = ?, is_active = ? WHERE id = ?`,
		toReal(c.BudgetAmount), c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM category_budget WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// InTx runs a category lifecycle step atomically.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(budget.Store) error) error {
	return r.withTx(ctx, func(tx *SQLiteRepository) error {
		return fn(tx)
	})
}

func scanCategory(s scanner) (core.CategoryBudget, error) {
	var (
		c       core.CategoryBudget
		amount  float64
		created storedTime
	)
	if err := s.Scan(&c.ID, &c.Name, &amount, &c.IsActive, &created); err != nil {
		return core.CategoryBudget{}, err
	}
	c.BudgetAmount = fromReal(amount)
	c.CreatedAt = created.Time
	return c, nil
}
