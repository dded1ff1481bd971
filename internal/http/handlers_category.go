package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var f flashes
	defer func() { f.save(w, r); redirectIndex(w, r) }()

	if err := r.ParseForm(); err != nil {
		f.add(FlashError, msgBadForm)
		return
	}
	in := categoryInput(r)

	res, err := s.deps.Categories.AddCategory(ctx, in)
	if err != nil {
		if msg, ok := categoryValidationMessage(err, strings.TrimSpace(in.Name)); ok {
			f.add(FlashError, msg)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to add category",
			log.NewFields().WithError(err).WithOperation(log.OpCreate).ToSlice()...)
		f.add(FlashError, "Error adding category: "+err.Error())
		return
	}

	c := res.Category
	if res.Reactivated {
		f.add(FlashSuccess, fmt.Sprintf("Category '%s' reactivated with budget %s", c.Name, dollars(c.BudgetAmount)))
		return
	}
	f.add(FlashSuccess, fmt.Sprintf("Category '%s' added successfully with budget %s", c.Name, dollars(c.BudgetAmount)))
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var f flashes
	if err := r.ParseForm(); err != nil {
		f.add(FlashError, msgBadForm)
		f.save(w, r)
		redirectIndex(w, r)
		return
	}

	c, err := s.deps.Categories.EditCategory(ctx, id, strings.TrimSpace(r.PostForm.Get("budget_amount")))
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	switch {
	case err != nil:
		if msg, ok := categoryValidationMessage(err, ""); ok {
			f.add(FlashError, msg)
			break
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to update category",
			log.NewFields().WithError(err).WithRecord(id).WithOperation(log.OpUpdate).ToSlice()...)
		f.add(FlashError, "Error updating category: "+err.Error())
	default:
		f.add(FlashSuccess, fmt.Sprintf("Category '%s' budget updated to %s", c.Name, dollars(c.BudgetAmount)))
	}
	f.save(w, r)
	redirectIndex(w, r)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	res, err := s.deps.Categories.DeleteCategory(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	var f flashes
	switch {
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete category",
			log.NewFields().WithError(err).WithRecord(id).WithOperation(log.OpDelete).ToSlice()...)
		f.add(FlashError, "Error deleting category: "+err.Error())
	case res.Deactivated:
		f.add(FlashWarning, fmt.Sprintf("Category '%s' deactivated (has existing expenses)", res.Name))
	default:
		f.add(FlashSuccess, fmt.Sprintf("Category '%s' deleted successfully", res.Name))
	}
	f.save(w, r)
	redirectIndex(w, r)
}
