// Package actions routes hook action specs to their handlers. The registry
// implements the engine's Dispatcher: one handler per action type, with
// unknown types reported as a failed action rather than an error.
package actions

import (
	"context"
	"fmt"
	"sync"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/hooks"
)

// Handler executes one action type against an event context.
type Handler interface {
	Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	return f(ctx, spec, eventCtx)
}

// Registry maps action types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logging.Logger
}

// NewRegistry creates an empty action registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register binds a handler to an action type, replacing any previous one.
func (r *Registry) Register(actionType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionType] = handler
}

// Types returns the registered action types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for actionType := range r.handlers {
		types = append(types, actionType)
	}
	return types
}

// Execute implements hooks.Dispatcher. It never panics and never aborts
// sibling actions: every outcome is an ActionResult.
func (r *Registry) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	r.mu.RLock()
	handler, ok := r.handlers[spec.Type]
	r.mu.RUnlock()

	if !ok {
		return hooks.ActionResult{
			Success: false,
			Message: fmt.Sprintf("unknown action type: %s", spec.Type),
		}
	}

	return handler.Execute(ctx, spec, eventCtx)
}
