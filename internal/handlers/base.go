// Package handlers implements the admin HTTP API: hook CRUD, execution
// history reads, event publication, and health.
package handlers

import (
	"encoding/json"
	"net/http"

	"hook-engine/internal/common/errors"
	"hook-engine/internal/common/logging"
	"hook-engine/internal/config"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage"
)

type Handlers struct {
	storage storage.Storage
	engine  hooks.Publisher
	config  *config.Config
	logger  logging.Logger
}

func New(store storage.Storage, engine hooks.Publisher, cfg *config.Config, logger logging.Logger) *Handlers {
	return &Handlers{
		storage: store,
		engine:  engine,
		config:  cfg,
		logger:  logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// respondError maps the application error taxonomy onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrTypeNotFound:
		status = http.StatusNotFound
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}
