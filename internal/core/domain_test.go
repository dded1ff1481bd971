package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestExpenseInputParse(t *testing.T) {
	good := ExpenseInput{Description: " Lunch ", Amount: "12,50", Category: "Food", Date: "2025-01-02"}
	e, fellBack, err := good.Parse(fixedNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if fellBack {
		t.Fatalf("did not expect date fallback")
	}
	if e.Description != "Lunch" || !e.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected expense %+v", e)
	}
	if got := e.Date.Format(DateLayout); got != "2025-01-02" {
		t.Fatalf("expected 2025-01-02, got %s", got)
	}

	bads := []struct {
		in   ExpenseInput
		want error
	}{
		{ExpenseInput{Amount: "1", Category: "c"}, ErrEmptyDescription},
		{ExpenseInput{Description: "a", Amount: "1"}, ErrEmptyCategory},
		{ExpenseInput{Description: "a", Category: "c"}, ErrNonPositiveAmount},
		{ExpenseInput{Description: "a", Amount: "-2", Category: "c"}, ErrNonPositiveAmount},
		{ExpenseInput{Description: "a", Amount: "ten", Category: "c"}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if _, _, err := tc.in.Parse(fixedNow); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseInputDateFallback(t *testing.T) {
	e, fellBack, err := ExpenseInput{Description: "a", Amount: "1", Category: "c", Date: "31/31/2025"}.Parse(fixedNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !fellBack || !e.Date.Equal(fixedNow) {
		t.Fatalf("expected fallback to now, got %v (fellBack=%v)", e.Date, fellBack)
	}

	e, fellBack, _ = ExpenseInput{Description: "a", Amount: "1", Category: "c"}.Parse(fixedNow)
	if fellBack || !e.Date.Equal(fixedNow) {
		t.Fatalf("absent date should silently default to now")
	}
}

func TestSavingInputParse(t *testing.T) {
	s, _, err := SavingInput{Description: "Salary", Amount: "100"}.Parse(fixedNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if s.Type != Deposit {
		t.Fatalf("expected default type deposit, got %q", s.Type)
	}
	if _, _, err := (SavingInput{Description: "x", Amount: "1", Type: "transfer"}).Parse(fixedNow); !errors.Is(err, ErrInvalidSavingType) {
		t.Fatalf("expected ErrInvalidSavingType, got %v", err)
	}
}

func TestCategoryInputParse(t *testing.T) {
	name, budget, err := CategoryInput{Name: " Books ", BudgetAmount: "250"}.Parse()
	if err != nil || name != "Books" || !budget.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected result %q %s %v", name, budget, err)
	}
	if _, _, err := (CategoryInput{BudgetAmount: "1"}).Parse(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, _, err := (CategoryInput{Name: "x", BudgetAmount: "0"}).Parse(); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}
	long := strings.Repeat("n", maxCategoryNameLen+1)
	if _, _, err := (CategoryInput{Name: long, BudgetAmount: "5"}).Parse(); !errors.Is(err, ErrNameLength) {
		t.Fatalf("expected ErrNameLength, got %v", err)
	}
}

func TestSavingSigned(t *testing.T) {
	d := Saving{Amount: decimal.NewFromInt(5), Type: Deposit}
	w := Saving{Amount: decimal.NewFromInt(5), Type: Withdrawal}
	if !d.Signed().Equal(decimal.NewFromInt(5)) || !w.Signed().Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("unexpected signs %s %s", d.Signed(), w.Signed())
	}
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange("2024-01-01", "2024-01-31")
	if err != nil || r.Start == nil || r.End == nil {
		t.Fatalf("expected bounded range, got %+v %v", r, err)
	}
	if !r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)) {
		t.Fatalf("end bound is inclusive of the whole day")
	}
	if r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day after end must be excluded")
	}

	r, err = NewDateRange("2024-02-01", "2024-01-01")
	if !errors.Is(err, ErrInvalidRange) || !r.IsZero() {
		t.Fatalf("expected cleared range with ErrInvalidRange, got %+v %v", r, err)
	}

	r, err = NewDateRange("yesterday", "")
	if err != nil || !r.IsZero() {
		t.Fatalf("malformed dates are treated as absent, got %+v %v", r, err)
	}
}
