package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Deposit    SavingType = "deposit"
	Withdrawal SavingType = "withdrawal"
)

const (
	maxDescriptionLen  = 200
	maxCategoryNameLen = 100
)

type (
	SavingType string

	Expense struct {
		ID          int64
		Description string
		Amount      decimal.Decimal
		Category    string // soft reference to CategoryBudget.Name
		Date        time.Time
	}

	CategoryBudget struct {
		ID           int64
		Name         string
		BudgetAmount decimal.Decimal
		IsActive     bool
		CreatedAt    time.Time
	}

	Saving struct {
		ID          int64
		Description string
		Amount      decimal.Decimal
		Date        time.Time
		Type        SavingType
		CreatedAt   time.Time
	}

	// CategoryStat is derived on every read and never persisted.
	CategoryStat struct {
		Category        CategoryBudget
		TotalExpenses   decimal.Decimal
		Remaining       decimal.Decimal
		PercentageUsed  decimal.Decimal
		OverBudget      bool
		DropdownVisible bool
	}
)

var (
	ErrEmptyDescription  = errors.New("empty description")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidSavingType = errors.New("invalid saving type")
	ErrEmptyName         = errors.New("empty category name")
	ErrNameLength        = errors.New("category name too long (max 100 characters)")
	ErrCategoryExists    = errors.New("category already exists")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidRange      = errors.New("end date before start date")
)

// ParseSavingType maps an empty value to Deposit.
func ParseSavingType(s string) (SavingType, error) {
	switch SavingType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Deposit:
		return Deposit, nil
	case Withdrawal:
		return Withdrawal, nil
	default:
		return "", ErrInvalidSavingType
	}
}

// Signed returns the saving amount with its balance sign applied.
func (s Saving) Signed() decimal.Decimal {
	if s.Type == Withdrawal {
		return s.Amount.Neg()
	}
	return s.Amount
}

func (e Expense) Validate() error {
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := validatePositive(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (s Saving) Validate() error {
	if err := validateDescription(s.Description); err != nil {
		return err
	}
	if err := validatePositive(s.Amount); err != nil {
		return err
	}
	if s.Type != Deposit && s.Type != Withdrawal {
		return ErrInvalidSavingType
	}
	return nil
}

func (c CategoryBudget) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxCategoryNameLen {
		return ErrNameLength
	}
	return validatePositive(c.BudgetAmount)
}

func validateDescription(desc string) error {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > maxDescriptionLen {
		return ErrDescriptionLength
	}
	return nil
}

func validatePositive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}
