package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"hook-engine/internal/common/errors"
	"hook-engine/internal/common/logging"
	"hook-engine/internal/common/pagination"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage"
)

type createHookRequest struct {
	hooks.Hook
	IsActive *bool `json:"is_active"`
}

// CreateHook registers a new hook definition.
func (h *Handlers) CreateHook(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.ValidationError(fmt.Sprintf("invalid JSON: %v", err)))
		return
	}

	hook := req.Hook
	// New hooks default to active unless the request says otherwise.
	hook.IsActive = req.IsActive == nil || *req.IsActive

	if err := hook.Validate(); err != nil {
		respondError(w, err)
		return
	}

	if err := h.storage.CreateHook(r.Context(), &hook); err != nil {
		h.logger.Error("failed to create hook", err, logging.String("name", hook.Name))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, hook)
}

// GetHook returns a single hook by id.
func (h *Handlers) GetHook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	hook, err := h.storage.GetHook(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, hook)
}

// ListHooks returns hook definitions with optional event and active filters.
func (h *Handlers) ListHooks(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	filters := storage.HookFilters{
		Event: r.URL.Query().Get("event"),
	}
	if activeParam := r.URL.Query().Get("active"); activeParam != "" {
		active := activeParam == "true"
		filters.Active = &active
	}

	result, total, err := h.storage.ListHooks(r.Context(), filters, params.Limit, params.Skip)
	if err != nil {
		h.logger.Error("failed to list hooks", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pagination.NewResponse(result, params, total))
}

type hookPatch struct {
	Name        *string                `json:"name"`
	Event       *string                `json:"event"`
	Description *string                `json:"description"`
	Priority    *int                   `json:"priority"`
	IsActive    *bool                  `json:"is_active"`
	Conditions  map[string]interface{} `json:"conditions"`
	Actions     []hooks.ActionSpec     `json:"actions"`
}

// UpdateHook applies a partial update to an existing hook. Absent fields keep
// their stored values; the merged result is validated as a whole.
func (h *Handlers) UpdateHook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	hook, err := h.storage.GetHook(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	var patch hookPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, errors.ValidationError(fmt.Sprintf("invalid JSON: %v", err)))
		return
	}

	if patch.Name != nil {
		hook.Name = *patch.Name
	}
	if patch.Event != nil {
		hook.Event = *patch.Event
	}
	if patch.Description != nil {
		hook.Description = *patch.Description
	}
	if patch.Priority != nil {
		hook.Priority = *patch.Priority
	}
	if patch.IsActive != nil {
		hook.IsActive = *patch.IsActive
	}
	if patch.Conditions != nil {
		// An empty object clears the condition tree; the hook matches
		// every event again. An absent field keeps the stored tree.
		if len(patch.Conditions) == 0 {
			hook.Conditions = nil
		} else {
			hook.Conditions = patch.Conditions
		}
	}
	if patch.Actions != nil {
		hook.Actions = patch.Actions
	}

	if err := hook.Validate(); err != nil {
		respondError(w, err)
		return
	}

	if err := h.storage.UpdateHook(r.Context(), hook); err != nil {
		h.logger.Error("failed to update hook", err, logging.String("id", id))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, hook)
}

// DeleteHook soft-deletes a hook; its execution history is retained.
func (h *Handlers) DeleteHook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.storage.SoftDeleteHook(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
