package actions

import (
	"context"
	"fmt"

	"hook-engine/internal/hooks"
)

// The email, notification and task action types delegate to collaborator
// services owned by other parts of the backend. Only the call boundary is
// defined here; a nil service turns the corresponding action into a
// configuration failure instead of a panic.

// EmailService sends a single email.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationService raises an in-app notification.
type NotificationService interface {
	Notify(ctx context.Context, recipient, title, message string) error
}

// TaskService creates a task in the task subsystem.
type TaskService interface {
	CreateTask(ctx context.Context, title, description string, metadata map[string]interface{}) (string, error)
}

// EmailHandler handles the email action type.
// Config keys: to (required), subject, body.
type EmailHandler struct {
	service EmailService
}

// NewEmailHandler creates the email action handler.
func NewEmailHandler(service EmailService) *EmailHandler {
	return &EmailHandler{service: service}
}

// Execute implements Handler.
func (h *EmailHandler) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	if h.service == nil {
		return hooks.ActionResult{Success: false, Message: "email service is not configured"}
	}

	to, _ := spec.Config["to"].(string)
	if to == "" {
		return hooks.ActionResult{Success: false, Message: "email action requires a recipient"}
	}
	subject, _ := spec.Config["subject"].(string)
	body, _ := spec.Config["body"].(string)

	if err := h.service.Send(ctx, to, subject, body); err != nil {
		return hooks.ActionResult{Success: false, Message: fmt.Sprintf("email to %s failed: %v", to, err)}
	}
	return hooks.ActionResult{Success: true, Message: fmt.Sprintf("email sent to %s", to)}
}

// NotificationHandler handles the notification action type.
// Config keys: recipient, title, message.
type NotificationHandler struct {
	service NotificationService
}

// NewNotificationHandler creates the notification action handler.
func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Execute implements Handler.
func (h *NotificationHandler) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	if h.service == nil {
		return hooks.ActionResult{Success: false, Message: "notification service is not configured"}
	}

	recipient, _ := spec.Config["recipient"].(string)
	title, _ := spec.Config["title"].(string)
	message, _ := spec.Config["message"].(string)

	if err := h.service.Notify(ctx, recipient, title, message); err != nil {
		return hooks.ActionResult{Success: false, Message: fmt.Sprintf("notification failed: %v", err)}
	}
	return hooks.ActionResult{Success: true, Message: "notification sent"}
}

// TaskHandler handles the task action type.
// Config keys: title (required), description.
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler creates the task action handler.
func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Execute implements Handler.
func (h *TaskHandler) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	if h.service == nil {
		return hooks.ActionResult{Success: false, Message: "task service is not configured"}
	}

	title, _ := spec.Config["title"].(string)
	if title == "" {
		return hooks.ActionResult{Success: false, Message: "task action requires a title"}
	}
	description, _ := spec.Config["description"].(string)

	taskID, err := h.service.CreateTask(ctx, title, description, eventCtx)
	if err != nil {
		return hooks.ActionResult{Success: false, Message: fmt.Sprintf("task creation failed: %v", err)}
	}
	return hooks.ActionResult{Success: true, Message: fmt.Sprintf("task %s created", taskID)}
}
