package actions

import (
	"context"
	"fmt"
	"time"

	"hook-engine/internal/delivery"
	"hook-engine/internal/hooks"
)

// WebhookHandler delivers the webhook action type through the delivery
// client.
//
// Recognized config keys:
//   - url (required)
//   - method (POST/PUT/PATCH, default POST)
//   - headers (map of extra request headers)
//   - custom_payload (map merged into the JSON body)
//   - include_context (false omits event_context from the body)
//   - timeout_seconds, max_retries, retry_delay_seconds (delivery overrides)
type WebhookHandler struct {
	client *delivery.Client
}

// NewWebhookHandler creates the webhook action handler.
func NewWebhookHandler(client *delivery.Client) *WebhookHandler {
	return &WebhookHandler{client: client}
}

// Execute implements Handler.
func (h *WebhookHandler) Execute(ctx context.Context, spec hooks.ActionSpec, eventCtx map[string]interface{}) hooks.ActionResult {
	url, _ := spec.Config["url"].(string)
	if url == "" {
		// No network call is attempted for a misconfigured action
		return hooks.ActionResult{Success: false, Message: "webhook action requires a url"}
	}

	payload := map[string]interface{}{}
	if includeContext(spec.Config) {
		payload["event_context"] = eventCtx
	}
	if custom, ok := spec.Config["custom_payload"].(map[string]interface{}); ok {
		for key, value := range custom {
			payload[key] = value
		}
	}

	req := delivery.Request{
		URL:     url,
		Payload: payload,
		Headers: stringMap(spec.Config["headers"]),
	}
	if method, ok := spec.Config["method"].(string); ok {
		req.Method = method
	}
	if seconds, ok := numericConfig(spec.Config, "timeout_seconds"); ok {
		req.Timeout = time.Duration(seconds * float64(time.Second))
	}
	if retries, ok := numericConfig(spec.Config, "max_retries"); ok {
		req.MaxRetries = int(retries)
	}
	if seconds, ok := numericConfig(spec.Config, "retry_delay_seconds"); ok {
		req.RetryDelay = time.Duration(seconds * float64(time.Second))
	}

	result := h.client.Send(ctx, req)
	if !result.Success {
		if result.StatusCode > 0 {
			return hooks.ActionResult{
				Success: false,
				Message: fmt.Sprintf("webhook to %s failed with HTTP %d after %d attempt(s): %s", url, result.StatusCode, result.Attempts, result.Error),
			}
		}
		return hooks.ActionResult{
			Success: false,
			Message: fmt.Sprintf("webhook to %s failed: %s", url, result.Error),
		}
	}

	return hooks.ActionResult{
		Success: true,
		Message: fmt.Sprintf("webhook delivered with HTTP %d in %dms", result.StatusCode, result.Duration.Milliseconds()),
	}
}

// includeContext defaults to true; only an explicit false omits the context.
func includeContext(config map[string]interface{}) bool {
	if value, ok := config["include_context"].(bool); ok {
		return value
	}
	return true
}

func stringMap(value interface{}) map[string]string {
	switch v := value.(type) {
	case map[string]string:
		return v
	case map[string]interface{}:
		out := make(map[string]string, len(v))
		for key, item := range v {
			if s, ok := item.(string); ok {
				out[key] = s
			}
		}
		return out
	default:
		return nil
	}
}

func numericConfig(config map[string]interface{}, key string) (float64, bool) {
	switch v := config[key].(type) {
	case float64:
		return v, v > 0
	case int:
		return float64(v), v > 0
	default:
		return 0, false
	}
}
