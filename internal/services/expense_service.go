// Package services holds the mutation workflows behind the web handlers.
package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

// ExpenseStore is the part of the record store that expense mutations use.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

// ExpenseService validates and persists expenses.
type ExpenseService struct {
	store  ExpenseStore
	logger *log.Logger
	now    func() time.Time
}

func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store, logger: serviceLogger(), now: time.Now}
}

// serviceLogger tags the lines of every service in this package.
func serviceLogger() *log.Logger {
	return log.Default().WithComponent(log.ComponentService)
}

// Create saves a submitted expense. dateFellBack reports that the submitted
// date was unusable and today was stored instead.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (e core.Expense, dateFellBack bool, err error) {
	e, dateFellBack, err = in.Parse(s.now())
	if err != nil {
		return core.Expense{}, false, err
	}
	if dateFellBack {
		s.logger.WarnContext(ctx, "Invalid expense date, using today", "submitted", in.Date)
	}
	if err := s.store.CreateExpense(ctx, &e); err != nil {
		return core.Expense{}, false, fmt.Errorf("save expense: %w", err)
	}
	return e, dateFellBack, nil
}

// Delete removes an expense, returning core.ErrNotFound for an unknown id.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}
