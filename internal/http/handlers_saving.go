package http

import (
	"errors"
	"fmt"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

func (s *Server) handleAddSaving(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var f flashes
	defer func() { f.save(w, r); redirectIndex(w, r) }()

	if err := r.ParseForm(); err != nil {
		f.add(FlashError, msgBadForm)
		return
	}

	sv, fellBack, err := s.deps.Savings.Create(ctx, savingInput(r))
	if err != nil {
		if msg, ok := savingValidationMessage(err); ok {
			f.add(FlashError, msg)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to save savings record",
			log.NewFields().WithError(err).WithOperation(log.OpCreate).ToSlice()...)
		f.add(FlashError, "Error saving savings record: "+err.Error())
		return
	}
	if fellBack {
		f.add(FlashWarning, msgInvalidDate)
	}
	f.add(FlashSuccess, fmt.Sprintf("Savings %s added successfully", sv.Type))
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var f flashes
	err := s.deps.Savings.Delete(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete savings record",
			log.NewFields().WithError(err).WithRecord(id).WithOperation(log.OpDelete).ToSlice()...)
		f.add(FlashError, "Error deleting savings record: "+err.Error())
	default:
		f.add(FlashSuccess, "Savings record deleted successfully")
	}
	f.save(w, r)
	redirectIndex(w, r)
}
