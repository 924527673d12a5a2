package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"hook-engine/internal/common/errors"
	"hook-engine/internal/hooks"
)

type publishResponse struct {
	Event          string `json:"event"`
	HooksSucceeded int    `json:"hooks_succeeded"`
}

// PublishEvent fires a domain event through the trigger engine. The request
// body, if any, is the event context object handed to conditions and actions.
func (h *Handlers) PublishEvent(w http.ResponseWriter, r *http.Request) {
	event := mux.Vars(r)["event"]
	if !hooks.ValidEventKey(event) {
		respondError(w, errors.ValidationError(fmt.Sprintf("invalid event key: %s", event)))
		return
	}

	eventContext := map[string]interface{}{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, errors.ValidationError("failed to read request body"))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &eventContext); err != nil {
			respondError(w, errors.ValidationError(fmt.Sprintf("event context must be a JSON object: %v", err)))
			return
		}
	}

	succeeded := h.engine.Publish(r.Context(), event, eventContext)

	respondJSON(w, http.StatusOK, publishResponse{
		Event:          event,
		HooksSucceeded: succeeded,
	})
}
