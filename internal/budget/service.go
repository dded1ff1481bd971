// Package budget computes per-category spend against budget and owns the
// category lifecycle.
//
// Categories are linked to expenses by name only. An expense whose category
// no longer exists, or is inactive, is simply left out of the statistics.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"

	"github.com/shopspring/decimal"
)

// Store is the slice of the record store the aggregator and lifecycle need.
type Store interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]core.CategoryBudget, error)
	GetCategory(ctx context.Context, id int64) (core.CategoryBudget, error)
	GetCategoryByName(ctx context.Context, name string) (core.CategoryBudget, error)
	CreateCategory(ctx context.Context, c *core.CategoryBudget) error
	UpdateCategory(ctx context.Context, c core.CategoryBudget) error
	DeleteCategory(ctx context.Context, id int64) error
	CountExpensesForCategory(ctx context.Context, name string) (int64, error)
	SumExpensesByCategory(ctx context.Context, f core.ExpenseFilter) (map[string]decimal.Decimal, error)
	ExpenseCategoryNames(ctx context.Context) (map[string]bool, error)
}

// TxStore can run a group of Store calls atomically.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

// AddResult reports whether adding a name revived an inactive category.
type AddResult struct {
	Category    core.CategoryBudget
	Reactivated bool
}

// DeleteResult reports whether a delete was downgraded to a deactivation.
type DeleteResult struct {
	Name        string
	Deactivated bool
}

type Service struct {
	store  TxStore
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store TxStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.Default().WithComponent(log.ComponentBudget),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeCategoryStats recomputes the statistics of every active category
// over the optional inclusive range.
func (s *Service) ComputeCategoryStats(ctx context.Context, r core.DateRange) (Stats, error) {
	cats, err := s.store.ListCategories(ctx, true)
	if err != nil {
		return Stats{}, fmt.Errorf("list active categories: %w", err)
	}
	totals, err := s.store.SumExpensesByCategory(ctx, core.ExpenseFilter{Range: r})
	if err != nil {
		return Stats{}, fmt.Errorf("sum expenses: %w", err)
	}

	stats := Stats{
		order:  make([]string, 0, len(cats)),
		byName: make(map[string]core.CategoryStat, len(cats)),
	}
	for _, c := range cats {
		stats.order = append(stats.order, c.Name)
		stats.byName[c.Name] = ComputeStat(c, totals[c.Name])
	}
	return stats, nil
}

// ComputeStat derives one category's statistics from its spend. A missing
// spend is the zero value, which decimal treats as 0.
func ComputeStat(c core.CategoryBudget, spent decimal.Decimal) core.CategoryStat {
	remaining := c.BudgetAmount.Sub(spent)
	return core.CategoryStat{
		Category:        c,
		TotalExpenses:   core.Round2(spent),
		Remaining:       core.Round2(remaining),
		PercentageUsed:  core.Percentage(spent, c.BudgetAmount),
		OverBudget:      remaining.IsNegative(),
		DropdownVisible: remaining.IsPositive() && c.IsActive,
	}
}

// AddCategory creates the category, or reactivates an inactive one with the
// same name and overwrites its budget. An active duplicate is rejected.
func (s *Service) AddCategory(ctx context.Context, in core.CategoryInput) (AddResult, error) {
	name, amount, err := in.Parse()
	if err != nil {
		return AddResult{}, err
	}

	var res AddResult
	err = s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.GetCategoryByName(ctx, name)
		switch {
		case errors.Is(err, core.ErrNotFound):
			c := core.CategoryBudget{Name: name, BudgetAmount: amount, IsActive: true, CreatedAt: s.now()}
			if err := tx.CreateCategory(ctx, &c); err != nil {
				return err
			}
			res = AddResult{Category: c}
			return nil
		case err != nil:
			return err
		case existing.IsActive:
			return fmt.Errorf("category %q: %w", name, core.ErrCategoryExists)
		}

		existing.IsActive = true
		existing.BudgetAmount = amount
		if err := tx.UpdateCategory(ctx, existing); err != nil {
			return err
		}
		res = AddResult{Category: existing, Reactivated: true}
		return nil
	})
	if err != nil {
		return AddResult{}, err
	}

	s.logger.InfoContext(ctx, "Category added",
		"name", res.Category.Name,
		"budget", res.Category.BudgetAmount.String(),
		"reactivated", res.Reactivated)
	return res, nil
}

// EditCategory replaces a category's budget amount.
func (s *Service) EditCategory(ctx context.Context, id int64, budgetAmount string) (core.CategoryBudget, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.CategoryBudget{}, err
	}
	amount, err := core.ParseBudgetAmount(budgetAmount)
	if err != nil {
		return core.CategoryBudget{}, err
	}
	c.BudgetAmount = amount
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.CategoryBudget{}, err
	}
	s.logger.InfoContext(ctx, "Category budget updated", "id", c.ID, "name", c.Name, "budget", amount.String())
	return c, nil
}

// DeleteCategory hard-deletes a category nobody references and deactivates
// one that still has expenses.
func (s *Service) DeleteCategory(ctx context.Context, id int64) (DeleteResult, error) {
	var res DeleteResult
	err := s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		n, err := tx.CountExpensesForCategory(ctx, c.Name)
		if err != nil {
			return err
		}
		res.Name = c.Name
		if n == 0 {
			return tx.DeleteCategory(ctx, id)
		}
		c.IsActive = false
		res.Deactivated = true
		return tx.UpdateCategory(ctx, c)
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.logger.InfoContext(ctx, "Category removed", "id", id, "name", res.Name, "deactivated", res.Deactivated)
	return res, nil
}

// ListCategories returns every category, active or not.
func (s *Service) ListCategories(ctx context.Context) ([]core.CategoryBudget, error) {
	return s.store.ListCategories(ctx, false)
}

// CategoriesWithExpenses maps every category id to whether any expense
// references its name.
func (s *Service) CategoriesWithExpenses(ctx context.Context, cats []core.CategoryBudget) (map[int64]bool, error) {
	used, err := s.store.ExpenseCategoryNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	out := make(map[int64]bool, len(cats))
	for _, c := range cats {
		out[c.ID] = used[c.Name]
	}
	return out, nil
}
