package http

import (
	"net/http"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/report"

	"github.com/shopspring/decimal"
)

type chartData struct {
	DayLabels []string  `json:"dayLabels"`
	DayValues []float64 `json:"dayValues"`
	CatLabels []string  `json:"catLabels"`
	CatValues []float64 `json:"catValues"`
}

type indexPage struct {
	Flashes      flashes
	Filter       filterParams
	Today        string
	Expenses     []core.Expense
	Total        decimal.Decimal
	Stats        []core.CategoryStat
	Dropdown     []string
	Categories   []core.CategoryBudget
	HasExpenses  map[int64]bool
	Savings      []core.Saving
	SavingsTotal decimal.Decimal
	Chart        chartData
	SyncEnabled  bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	page := indexPage{
		Flashes:     popFlashes(w, r),
		Today:       time.Now().Format(core.DateLayout),
		SyncEnabled: s.deps.Sync != nil,
	}

	params, filter, invalidRange := parseFilter(r.URL.Query())
	if invalidRange {
		page.Flashes.add(FlashError, msgInvalidRange)
	}
	page.Filter = params

	rep, err := s.deps.Reports.Build(ctx, filter)
	if err != nil {
		s.renderError(w, r, "build report", err)
		return
	}
	stats, err := s.deps.Categories.ComputeCategoryStats(ctx, filter.Range)
	if err != nil {
		s.renderError(w, r, "compute category stats", err)
		return
	}
	cats, err := s.deps.Categories.ListCategories(ctx)
	if err != nil {
		s.renderError(w, r, "list categories", err)
		return
	}
	used, err := s.deps.Categories.CategoriesWithExpenses(ctx, cats)
	if err != nil {
		s.renderError(w, r, "categories with expenses", err)
		return
	}

	page.Expenses = rep.Expenses
	page.Total = rep.ExpenseTotal
	page.Savings = rep.Savings
	page.SavingsTotal = rep.SavingsBalance
	page.Stats = stats.All()
	page.Dropdown = stats.DropdownCategories()
	page.Categories = cats
	page.HasExpenses = used
	page.Chart = chartData{
		DayLabels: report.Labels(rep.DailySeries),
		DayValues: report.Values(rep.DailySeries),
		CatLabels: report.Labels(rep.CategorySeries),
		CatValues: report.Values(rep.CategorySeries),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", page); err != nil {
		logger.ErrorContext(ctx, "Index template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, what string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Index data unavailable",
		"step", what,
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeDatabase)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
