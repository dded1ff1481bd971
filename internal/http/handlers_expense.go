package http

import (
	"errors"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/log"

	"github.com/gocarina/gocsv"
)

const msgBadForm = "Invalid form submission."

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var f flashes
	defer func() { f.save(w, r); redirectIndex(w, r) }()

	if err := r.ParseForm(); err != nil {
		f.add(FlashError, msgBadForm)
		return
	}

	e, fellBack, err := s.deps.Expenses.Create(ctx, expenseInput(r))
	if err != nil {
		if msg, ok := expenseValidationMessage(err); ok {
			f.add(FlashError, msg)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to save expense",
			log.NewFields().WithError(err).WithOperation(log.OpCreate).ToSlice()...)
		f.add(FlashError, "Error saving expense: "+err.Error())
		return
	}
	if fellBack {
		f.add(FlashWarning, msgInvalidDate)
	}
	log.FromContext(ctx).InfoContext(ctx, "Expense added",
		log.FieldRecordID, e.ID,
		log.FieldCategory, e.Category,
		log.FieldAmount, e.Amount.String())
	f.add(FlashSuccess, "Expense added successfully")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var f flashes
	err := s.deps.Expenses.Delete(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete expense",
			log.NewFields().WithError(err).WithRecord(id).WithOperation(log.OpDelete).ToSlice()...)
		f.add(FlashError, "Error deleting expense: "+err.Error())
	default:
		f.add(FlashSuccess, "Expense deleted successfully")
	}
	f.save(w, r)
	redirectIndex(w, r)
}

// expenseRow is the CSV shape of an expense.
type expenseRow struct {
	ID          int64  `csv:"id"`
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Category    string `csv:"category"`
	Amount      string `csv:"amount"`
}

// handleExportCSV downloads the expenses matching the index filter.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, filter, _ := parseFilter(r.URL.Query())

	rep, err := s.deps.Reports.Build(ctx, filter)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "CSV export failed", log.FieldError, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rows := make([]expenseRow, 0, len(rep.Expenses))
	for _, e := range rep.Expenses {
		rows = append(rows, expenseRow{
			ID:          e.ID,
			Date:        e.Date.Format(core.DateLayout),
			Description: e.Description,
			Category:    e.Category,
			Amount:      core.FormatAmount(e.Amount),
		})
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := gocsv.Marshal(&rows, w); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "CSV encoding failed", log.FieldError, err)
	}
}
