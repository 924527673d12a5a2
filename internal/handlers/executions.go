package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"hook-engine/internal/common/pagination"
	"hook-engine/internal/storage"
)

// ListHookExecutions returns the execution history of a single hook. The hook
// must exist (soft-deleted hooks keep their history but 404 here).
func (h *Handlers) ListHookExecutions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.storage.GetHook(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	params := pagination.ParseParams(r)
	filters := storage.ExecutionFilters{HookID: id}
	applySuccessFilter(r, &filters)

	result, total, err := h.storage.ListExecutions(r.Context(), filters, params.Limit, params.Skip)
	if err != nil {
		h.logger.Error("failed to list hook executions", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pagination.NewResponse(result, params, total))
}

// ListExecutions returns execution history across all hooks.
func (h *Handlers) ListExecutions(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	filters := storage.ExecutionFilters{
		HookID: r.URL.Query().Get("hook_id"),
	}
	applySuccessFilter(r, &filters)

	result, total, err := h.storage.ListExecutions(r.Context(), filters, params.Limit, params.Skip)
	if err != nil {
		h.logger.Error("failed to list executions", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pagination.NewResponse(result, params, total))
}

// GetExecution returns a single execution record.
func (h *Handlers) GetExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	execution, err := h.storage.GetExecution(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, execution)
}

func applySuccessFilter(r *http.Request, filters *storage.ExecutionFilters) {
	if successParam := r.URL.Query().Get("success"); successParam != "" {
		success := successParam == "true"
		filters.Success = &success
	}
}
