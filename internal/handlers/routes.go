package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"hook-engine/internal/middleware"
)

// Router builds the full route table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/hooks", h.CreateHook).Methods(http.MethodPost)
	api.HandleFunc("/hooks", h.ListHooks).Methods(http.MethodGet)
	api.HandleFunc("/hooks/{id}", h.GetHook).Methods(http.MethodGet)
	api.HandleFunc("/hooks/{id}", h.UpdateHook).Methods(http.MethodPatch)
	api.HandleFunc("/hooks/{id}", h.DeleteHook).Methods(http.MethodDelete)
	api.HandleFunc("/hooks/{id}/executions", h.ListHookExecutions).Methods(http.MethodGet)

	api.HandleFunc("/executions", h.ListExecutions).Methods(http.MethodGet)
	api.HandleFunc("/executions/{id}", h.GetExecution).Methods(http.MethodGet)

	api.HandleFunc("/events/{event}", h.PublishEvent).Methods(http.MethodPost)

	return r
}
