package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Storage: "ok"}
	status := http.StatusOK

	if err := h.storage.Health(); err != nil {
		resp.Status = "degraded"
		resp.Storage = err.Error()
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}
