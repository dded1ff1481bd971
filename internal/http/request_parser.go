package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"budgetbook/internal/core"

	"github.com/go-chi/chi/v5"
)

// filterParams is the index query string as submitted.
type filterParams struct {
	Start    string
	End      string
	Category string
}

// parseFilter builds the expense filter. An inverted range is dropped and
// reported so the page can still render unfiltered.
func parseFilter(q url.Values) (filterParams, core.ExpenseFilter, bool) {
	p := filterParams{
		Start:    strings.TrimSpace(q.Get("start")),
		End:      strings.TrimSpace(q.Get("end")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	r, err := core.NewDateRange(p.Start, p.End)
	invalid := errors.Is(err, core.ErrInvalidRange)
	if invalid {
		p.Start, p.End = "", ""
	}
	return p, core.ExpenseFilter{Range: r, Category: p.Category}, invalid
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters except tab, newline and CR.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func expenseInput(r *http.Request) core.ExpenseInput {
	return core.ExpenseInput{
		Description: sanitizeInput(r.PostForm.Get("description")),
		Amount:      strings.TrimSpace(r.PostForm.Get("amount")),
		Category:    sanitizeInput(r.PostForm.Get("category")),
		Date:        strings.TrimSpace(r.PostForm.Get("date")),
	}
}

func savingInput(r *http.Request) core.SavingInput {
	return core.SavingInput{
		Description: sanitizeInput(r.PostForm.Get("description")),
		Amount:      strings.TrimSpace(r.PostForm.Get("amount")),
		Date:        strings.TrimSpace(r.PostForm.Get("date")),
		Type:        strings.TrimSpace(r.PostForm.Get("type")),
	}
}

func categoryInput(r *http.Request) core.CategoryInput {
	return core.CategoryInput{
		Name:         sanitizeInput(r.PostForm.Get("name")),
		BudgetAmount: strings.TrimSpace(r.PostForm.Get("budget_amount")),
	}
}
