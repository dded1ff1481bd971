package http

import (
	"errors"
	"fmt"

	"budgetbook/internal/core"
	"budgetbook/internal/mirror"
	"budgetbook/internal/services"

	"github.com/shopspring/decimal"
)

const (
	msgInvalidDate      = "Invalid date format. Using today's date."
	msgInvalidRange     = "End date cannot be earlier than start date."
	msgAmountPositive   = "Amount must be positive."
	msgAmountInvalid    = "Invalid amount. Please enter a positive number."
	msgExpenseRequired  = "Description, amount, and category are required!"
	msgSavingRequired   = "Description and amount are required!"
	msgNameRequired     = "Category name is required!"
	msgBudgetPositive   = "Budget amount must be positive."
	msgBudgetInvalid    = "Invalid budget amount."
	msgSavingType       = "Saving type must be deposit or withdrawal."
	msgSyncInProgress   = "A sync is already running. Try again when it finishes."
	msgSyncUnconfigured = "Sync is not configured."
)

// expenseValidationMessage maps an input error to the text shown to the user. ok is
// false for errors that are not the user's fault.
func expenseValidationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrEmptyDescription), errors.Is(err, core.ErrEmptyCategory):
		return msgExpenseRequired, true
	}
	return amountOrFieldMessage(err)
}

func savingValidationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return msgSavingRequired, true
	case errors.Is(err, core.ErrInvalidSavingType):
		return msgSavingType, true
	}
	return amountOrFieldMessage(err)
}

func amountOrFieldMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrNonPositiveAmount):
		return msgAmountPositive, true
	case errors.Is(err, core.ErrInvalidAmount):
		return msgAmountInvalid, true
	case errors.Is(err, core.ErrDescriptionLength):
		return "Description is too long.", true
	}
	return "", false
}

func categoryValidationMessage(err error, name string) (string, bool) {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return msgNameRequired, true
	case errors.Is(err, core.ErrNameLength):
		return "Category name is too long.", true
	case errors.Is(err, core.ErrNonPositiveAmount):
		return msgBudgetPositive, true
	case errors.Is(err, core.ErrInvalidAmount):
		return msgBudgetInvalid, true
	case errors.Is(err, core.ErrCategoryExists):
		return fmt.Sprintf("Category '%s' already exists!", name), true
	}
	return "", false
}

func dollars(d decimal.Decimal) string {
	return "$" + core.FormatAmount(d)
}

// syncMessage renders a trigger outcome as a flash.
func syncMessage(res services.TriggerResult, err error) Flash {
	switch {
	case errors.Is(err, mirror.ErrSyncInProgress):
		return Flash{Level: FlashWarning, Message: msgSyncInProgress}
	case errors.Is(err, services.ErrSyncUnavailable):
		return Flash{Level: FlashError, Message: msgSyncUnconfigured}
	case err != nil:
		return Flash{Level: FlashError, Message: "Sync error: " + err.Error()}
	case !res.Queued && res.Report.HasFailures():
		return Flash{Level: FlashError, Message: res.Message()}
	}
	return Flash{Level: FlashSuccess, Message: res.Message()}
}
