package actions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/delivery"
	"hook-engine/internal/hooks"
)

func newWebhookHandler() *WebhookHandler {
	client := delivery.NewClient(delivery.Defaults{
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	}, logging.NewDefaultLogger())
	return NewWebhookHandler(client)
}

func TestWebhookHandler_DeliversEventContext(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := newWebhookHandler()
	spec := hooks.ActionSpec{
		Type:   hooks.ActionWebhook,
		Config: map[string]interface{}{"url": server.URL},
	}
	eventCtx := map[string]interface{}{"order_id": "o-1"}

	result := handler.Execute(context.Background(), spec, eventCtx)

	require.True(t, result.Success)
	assert.Contains(t, result.Message, "HTTP 200")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	inner, ok := payload["event_context"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "o-1", inner["order_id"])
}

func TestWebhookHandler_CustomPayloadMergesAndContextCanBeOmitted(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := newWebhookHandler()
	spec := hooks.ActionSpec{
		Type: hooks.ActionWebhook,
		Config: map[string]interface{}{
			"url":             server.URL,
			"include_context": false,
			"custom_payload":  map[string]interface{}{"source": "hook-engine"},
		},
	}

	result := handler.Execute(context.Background(), spec, map[string]interface{}{"secret": "x"})
	require.True(t, result.Success)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "hook-engine", payload["source"])
	_, hasContext := payload["event_context"]
	assert.False(t, hasContext)
}

func TestWebhookHandler_MissingURL(t *testing.T) {
	handler := newWebhookHandler()

	result := handler.Execute(context.Background(), hooks.ActionSpec{
		Type:   hooks.ActionWebhook,
		Config: map[string]interface{}{},
	}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "requires a url")
}

func TestWebhookHandler_ReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	handler := newWebhookHandler()
	result := handler.Execute(context.Background(), hooks.ActionSpec{
		Type:   hooks.ActionWebhook,
		Config: map[string]interface{}{"url": server.URL},
	}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "HTTP 403")
	assert.Contains(t, result.Message, "1 attempt(s)")
}

func TestWebhookHandler_MethodOverride(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := newWebhookHandler()
	result := handler.Execute(context.Background(), hooks.ActionSpec{
		Type: hooks.ActionWebhook,
		Config: map[string]interface{}{
			"url":    server.URL,
			"method": "PUT",
		},
	}, nil)

	require.True(t, result.Success)
	assert.Equal(t, http.MethodPut, gotMethod)
}
