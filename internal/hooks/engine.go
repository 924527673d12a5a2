package hooks

import (
	"context"
	"strings"
	"time"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/common/utils"
)

// Store supplies active hooks for an event and records executions. The
// storage layer implements it; the engine never opens its own transactions
// against the caller's business data.
type Store interface {
	// ActiveHooksForEvent returns non-deleted, active hooks bound to the
	// event, ordered by priority descending with creation time (then id) as
	// the deterministic tie-break.
	ActiveHooksForEvent(ctx context.Context, event string) ([]*Hook, error)

	// CreateExecution appends one immutable audit row.
	CreateExecution(ctx context.Context, execution *HookExecution) error
}

// ActionResult is the outcome of one dispatched action.
type ActionResult struct {
	Success bool
	Message string
}

// Dispatcher routes an action spec to the matching handler.
type Dispatcher interface {
	Execute(ctx context.Context, spec ActionSpec, eventCtx map[string]interface{}) ActionResult
}

// Publisher is the narrow seam business code fires events through. Moving to
// an out-of-process queue later only requires swapping this implementation.
type Publisher interface {
	// Publish fires an event and returns the count of hooks that fully
	// succeeded. It never returns an error: firing an event is best-effort
	// and must not be able to fail the caller's business transaction.
	Publish(ctx context.Context, event string, eventCtx map[string]interface{}) int
}

// Engine orchestrates hook matching, action dispatch and audit recording.
// Hooks within one event batch run strictly sequentially in priority order;
// actions within one hook run strictly in list order. Concurrent Publish
// calls are independent: no lock is shared across invocations.
type Engine struct {
	store      Store
	dispatcher Dispatcher
	logger     logging.Logger
}

// NewEngine creates a trigger engine.
func NewEngine(store Store, dispatcher Dispatcher, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Engine{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Publish implements Publisher.
func (e *Engine) Publish(ctx context.Context, event string, eventCtx map[string]interface{}) int {
	return e.TriggerEvent(ctx, event, eventCtx)
}

// TriggerEvent fires an event against all matching hooks and returns the
// number of hooks whose actions all succeeded. Zero matching hooks is a
// normal outcome. Internal failures are logged and contained per hook: the
// worst case for the caller is a zero count, never a panic or error.
func (e *Engine) TriggerEvent(ctx context.Context, event string, eventCtx map[string]interface{}) int {
	matched, err := e.store.ActiveHooksForEvent(ctx, event)
	if err != nil {
		e.logger.Error("Failed to load hooks for event", err, logging.String("event", event))
		return 0
	}
	if len(matched) == 0 {
		return 0
	}

	succeeded := 0
	for _, hook := range matched {
		if e.processHook(ctx, hook, event, eventCtx) {
			succeeded++
		}
	}

	return succeeded
}

// processHook runs one hook through its lifecycle: condition check, action
// batch, audit record. Returns true only when every action succeeded. Any
// panic is contained here so remaining hooks in the batch still run.
func (e *Engine) processHook(ctx context.Context, hook *Hook, event string, eventCtx map[string]interface{}) (allSucceeded bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Panic while processing hook", nil,
				logging.String("hook_id", hook.ID),
				logging.String("event", event),
				logging.Any("panic", r))
			allSucceeded = false
		}
	}()

	if !EvaluateConditions(hook.Conditions, eventCtx) {
		e.logger.Debug("Hook conditions not matched, skipping",
			logging.String("hook_id", hook.ID),
			logging.String("event", event))
		return false
	}

	start := time.Now()
	var failures []string

	// Actions run in list order; a failing action never stops its siblings.
	for i, action := range hook.Actions {
		result := e.dispatchAction(ctx, action, eventCtx)
		if !result.Success {
			failures = append(failures, result.Message)
			e.logger.Warn("Hook action failed",
				logging.String("hook_id", hook.ID),
				logging.Int("action_index", i),
				logging.String("action_type", action.Type),
				logging.String("message", result.Message))
		}
	}

	elapsed := time.Since(start)
	allSucceeded = len(failures) == 0

	execution := &HookExecution{
		ID:           utils.MustGenerateUUID(),
		HookID:       hook.ID,
		Success:      allSucceeded,
		DurationMs:   elapsed.Milliseconds(),
		EventContext: eventCtx,
		CreatedAt:    time.Now().UTC(),
	}
	if len(failures) > 0 {
		msg := strings.Join(failures, "; ")
		execution.ErrorMessage = &msg
	}

	// An audit write failure must not stop the rest of the batch.
	if err := e.store.CreateExecution(ctx, execution); err != nil {
		e.logger.Error("Failed to record hook execution", err,
			logging.String("hook_id", hook.ID),
			logging.String("event", event))
	}

	e.logger.Info("Hook executed",
		logging.String("hook_id", hook.ID),
		logging.String("event", event),
		logging.Bool("success", allSucceeded),
		logging.Int64("duration_ms", elapsed.Milliseconds()))

	return allSucceeded
}

// dispatchAction shields the engine from a panicking handler: the action is
// reported as failed and siblings still run.
func (e *Engine) dispatchAction(ctx context.Context, spec ActionSpec, eventCtx map[string]interface{}) (result ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ActionResult{Success: false, Message: "action handler panicked"}
		}
	}()
	return e.dispatcher.Execute(ctx, spec, eventCtx)
}
