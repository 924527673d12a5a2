// Package hooks implements the hook trigger engine: condition-gated
// automations bound to domain events, each composed of ordered actions
// executed with per-action failure isolation and an immutable audit trail.
package hooks

import (
	"regexp"
	"time"

	"hook-engine/internal/common/errors"
)

// Action types understood by the dispatcher. Unknown types are a
// dispatch-time failure, not a load-time error.
const (
	ActionWebhook      = "webhook"
	ActionEmail        = "email"
	ActionNotification = "notification"
	ActionCreateTask   = "task"
)

// ActionSpec is one unit of work performed when a hook matches. Config is an
// opaque key/value bag interpreted by the handler for the given type.
type ActionSpec struct {
	Type   string                 `json:"type"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// Hook is a stored rule binding an event name to an ordered list of actions,
// optionally gated by a condition tree. Removal is logical: a soft-deleted
// hook is excluded from matching forever but its execution rows remain.
type Hook struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Event       string                 `json:"event"`
	Description string                 `json:"description,omitempty"`
	Priority    int                    `json:"priority"`
	IsActive    bool                   `json:"is_active"`
	Conditions  map[string]interface{} `json:"conditions,omitempty"`
	Actions     []ActionSpec           `json:"actions"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	DeletedAt   *time.Time             `json:"deleted_at,omitempty"`
}

// HookExecution is one immutable audit row per hook firing. Rows are
// append-only: never updated or deleted after creation.
type HookExecution struct {
	ID           string                 `json:"id"`
	HookID       string                 `json:"hook_id"`
	Success      bool                   `json:"success"`
	DurationMs   int64                  `json:"duration_ms"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	EventContext map[string]interface{} `json:"event_context"`
	CreatedAt    time.Time              `json:"created_at"`
}

// eventKeyPattern matches dot-namespaced event keys like "user.created".
var eventKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*$`)

// ValidEventKey reports whether s is a well-formed event key.
func ValidEventKey(s string) bool {
	return eventKeyPattern.MatchString(s)
}

// Validate checks a hook definition at create/update time. An empty action
// list is rejected here; unknown action types are deliberately not, since
// they only fail at dispatch time.
func (h *Hook) Validate() error {
	if h.Name == "" {
		return errors.ValidationError("hook name is required")
	}
	if h.Event == "" {
		return errors.ValidationError("hook event is required")
	}
	if !ValidEventKey(h.Event) {
		return errors.ValidationError("hook event must be a dot-namespaced key, e.g. \"user.created\"")
	}
	if len(h.Actions) == 0 {
		return errors.ValidationError("hook must have at least one action")
	}
	for i, action := range h.Actions {
		if action.Type == "" {
			return errors.ValidationError("action type is required").WithContext("action_index", i)
		}
	}
	if len(h.Conditions) > 0 {
		if err := ValidateConditions(h.Conditions); err != nil {
			return err
		}
	}
	return nil
}
