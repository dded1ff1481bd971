package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"budgetbook/internal/log"
	"budgetbook/internal/services"
)

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		res services.TriggerResult
		err error
	)
	if s.deps.Sync == nil {
		err = services.ErrSyncUnavailable
	} else {
		res, err = s.deps.Sync.Trigger(ctx, "web")
	}

	msg := syncMessage(res, err)
	logger := log.FromContext(ctx)
	if msg.Level == FlashError {
		logger.ErrorContext(ctx, "Sync request failed", log.FieldOperation, log.OpSync, "message", msg.Message)
	} else {
		logger.InfoContext(ctx, "Sync request handled", log.FieldOperation, log.OpSync, "queued", res.Queued)
	}

	flashes{msg}.save(w, r)
	redirectIndex(w, r)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the record store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}
	if s.deps.Store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.deps.Store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.deps.Sync == nil {
		checks["sync"] = "disabled"
	} else {
		checks["sync"] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
