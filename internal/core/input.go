package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseInput is the raw form submission for a new expense.
type ExpenseInput struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// SavingInput is the raw form submission for a savings record.
type SavingInput struct {
	Description string
	Amount      string
	Date        string
	Type        string
}

// CategoryInput is the raw form submission for adding a category.
type CategoryInput struct {
	Name         string
	BudgetAmount string
}

// Parse validates the submission as a whole. Nothing is returned unless every
// field is valid; an unparsable date is the only soft failure and is reported
// through dateFellBack.
func (in ExpenseInput) Parse(now time.Time) (e Expense, dateFellBack bool, err error) {
	desc := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if desc == "" {
		return Expense{}, false, ErrEmptyDescription
	}
	if category == "" {
		return Expense{}, false, ErrEmptyCategory
	}
	amount, err := parseSubmittedAmount(in.Amount)
	if err != nil {
		return Expense{}, false, err
	}
	date, fellBack := ParseEntryDate(in.Date, now)
	e = Expense{Description: desc, Amount: amount, Category: category, Date: date}
	if err := e.Validate(); err != nil {
		return Expense{}, false, err
	}
	return e, fellBack, nil
}

func (in SavingInput) Parse(now time.Time) (s Saving, dateFellBack bool, err error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Saving{}, false, ErrEmptyDescription
	}
	amount, err := parseSubmittedAmount(in.Amount)
	if err != nil {
		return Saving{}, false, err
	}
	typ, err := ParseSavingType(in.Type)
	if err != nil {
		return Saving{}, false, err
	}
	date, fellBack := ParseEntryDate(in.Date, now)
	s = Saving{Description: desc, Amount: amount, Date: date, Type: typ, CreatedAt: now}
	if err := s.Validate(); err != nil {
		return Saving{}, false, err
	}
	return s, fellBack, nil
}

func (in CategoryInput) Parse() (name string, budget decimal.Decimal, err error) {
	name = strings.TrimSpace(in.Name)
	if name == "" {
		return "", decimal.Zero, ErrEmptyName
	}
	budget, err = parseSubmittedAmount(in.BudgetAmount)
	if err != nil {
		return "", decimal.Zero, err
	}
	if err := (CategoryBudget{Name: name, BudgetAmount: budget}).Validate(); err != nil {
		return "", decimal.Zero, err
	}
	return name, budget, nil
}

// ParseBudgetAmount validates a budget edit.
func ParseBudgetAmount(s string) (decimal.Decimal, error) {
	return parseSubmittedAmount(s)
}

// parseSubmittedAmount treats a missing amount as zero, which is then
// rejected as non-positive rather than malformed.
func parseSubmittedAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return ParseAmount(s)
}
