package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/config"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage/sqlite"
)

type stubPublisher struct {
	event    string
	eventCtx map[string]interface{}
	count    int
}

func (p *stubPublisher) Publish(ctx context.Context, event string, eventCtx map[string]interface{}) int {
	p.event = event
	p.eventCtx = eventCtx
	return p.count
}

func setupHandlers(t *testing.T) (*Handlers, *stubPublisher) {
	adapter, err := sqlite.NewAdapter(&sqlite.Config{DatabasePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	publisher := &stubPublisher{count: 1}
	h := New(adapter, publisher, config.Load(), logging.NewDefaultLogger())
	return h, publisher
}

func doJSON(t *testing.T, h *Handlers, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func validHookBody() map[string]interface{} {
	return map[string]interface{}{
		"name":  "notify-sales",
		"event": "order.created",
		"actions": []map[string]interface{}{
			{"type": "webhook", "config": map[string]interface{}{"url": "https://example.com/h"}},
		},
	}
}

func createHook(t *testing.T, h *Handlers, body map[string]interface{}) hooks.Hook {
	rec := doJSON(t, h, http.MethodPost, "/api/hooks", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var hook hooks.Hook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hook))
	return hook
}

func TestCreateHook(t *testing.T) {
	h, _ := setupHandlers(t)

	t.Run("valid hook", func(t *testing.T) {
		hook := createHook(t, h, validHookBody())
		assert.NotEmpty(t, hook.ID)
		assert.True(t, hook.IsActive)
		assert.Equal(t, "order.created", hook.Event)
	})

	t.Run("explicitly inactive", func(t *testing.T) {
		body := validHookBody()
		body["is_active"] = false
		hook := createHook(t, h, body)
		assert.False(t, hook.IsActive)
	})

	t.Run("missing actions", func(t *testing.T) {
		body := validHookBody()
		delete(body, "actions")
		rec := doJSON(t, h, http.MethodPost, "/api/hooks", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad event key", func(t *testing.T) {
		body := validHookBody()
		body["event"] = "order created"
		rec := doJSON(t, h, http.MethodPost, "/api/hooks", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown condition operator", func(t *testing.T) {
		body := validHookBody()
		body["conditions"] = map[string]interface{}{"amount": map[string]interface{}{"~>": 10}}
		rec := doJSON(t, h, http.MethodPost, "/api/hooks", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "operator")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/hooks", bytes.NewReader([]byte("{nope")))
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetHook(t *testing.T) {
	h, _ := setupHandlers(t)
	hook := createHook(t, h, validHookBody())

	t.Run("found", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks/"+hook.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got hooks.Hook
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, hook.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListHooks(t *testing.T) {
	h, _ := setupHandlers(t)

	createHook(t, h, validHookBody())
	other := validHookBody()
	other["name"] = "audit-user"
	other["event"] = "user.created"
	createHook(t, h, other)

	t.Run("envelope", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Skip    int          `json:"skip"`
			Limit   int          `json:"limit"`
			Total   int          `json:"total"`
			Results []hooks.Hook `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, 2, envelope.Total)
		assert.Equal(t, 20, envelope.Limit)
		assert.Len(t, envelope.Results, 2)
	})

	t.Run("event filter", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks?event=user.created", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Total   int          `json:"total"`
			Results []hooks.Hook `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, 1, envelope.Total)
		require.Len(t, envelope.Results, 1)
		assert.Equal(t, "audit-user", envelope.Results[0].Name)
	})
}

func TestUpdateHook(t *testing.T) {
	h, _ := setupHandlers(t)
	hook := createHook(t, h, validHookBody())

	t.Run("partial patch keeps other fields", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/hooks/"+hook.ID, map[string]interface{}{
			"priority":  9,
			"is_active": false,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got hooks.Hook
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 9, got.Priority)
		assert.False(t, got.IsActive)
		assert.Equal(t, "notify-sales", got.Name)
		assert.Equal(t, "order.created", got.Event)
	})

	t.Run("empty conditions object clears the tree", func(t *testing.T) {
		body := validHookBody()
		body["name"] = "gated"
		body["conditions"] = map[string]interface{}{"amount": map[string]interface{}{">": 100}}
		gated := createHook(t, h, body)
		require.NotNil(t, gated.Conditions)

		rec := doJSON(t, h, http.MethodPatch, "/api/hooks/"+gated.ID, map[string]interface{}{
			"conditions": map[string]interface{}{},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got hooks.Hook
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Nil(t, got.Conditions)

		stored, err := h.storage.GetHook(context.Background(), gated.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Conditions)
	})

	t.Run("absent conditions field keeps the tree", func(t *testing.T) {
		body := validHookBody()
		body["name"] = "still-gated"
		body["conditions"] = map[string]interface{}{"amount": map[string]interface{}{">": 100}}
		gated := createHook(t, h, body)

		rec := doJSON(t, h, http.MethodPatch, "/api/hooks/"+gated.ID, map[string]interface{}{
			"priority": 3,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got hooks.Hook
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotNil(t, got.Conditions)
	})

	t.Run("patch that breaks validation", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/hooks/"+hook.ID, map[string]interface{}{
			"event": "not a key",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown hook", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/hooks/missing", map[string]interface{}{"priority": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteHook(t *testing.T) {
	h, _ := setupHandlers(t)
	hook := createHook(t, h, validHookBody())

	rec := doJSON(t, h, http.MethodDelete, "/api/hooks/"+hook.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/hooks/"+hook.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/hooks/"+hook.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListHookExecutions(t *testing.T) {
	h, _ := setupHandlers(t)
	hook := createHook(t, h, validHookBody())

	require.NoError(t, h.storage.CreateExecution(context.Background(), &hooks.HookExecution{
		HookID:     hook.ID,
		Success:    true,
		DurationMs: 5,
	}))

	t.Run("returns rows", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks/"+hook.ID+"/executions", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Total   int                   `json:"total"`
			Results []hooks.HookExecution `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, 1, envelope.Total)
	})

	t.Run("unknown hook", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/hooks/missing/executions", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPublishEvent(t *testing.T) {
	h, publisher := setupHandlers(t)
	publisher.count = 3

	t.Run("fires through the engine", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/events/order.created", map[string]interface{}{
			"order_id": "o-9",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp publishResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "order.created", resp.Event)
		assert.Equal(t, 3, resp.HooksSucceeded)

		assert.Equal(t, "order.created", publisher.event)
		assert.Equal(t, "o-9", publisher.eventCtx["order_id"])
	})

	t.Run("empty body means empty context", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/events/order.created", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, publisher.eventCtx)
		assert.Empty(t, publisher.eventCtx)
	})

	t.Run("non-object context rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/events/order.created", bytes.NewReader([]byte(`[1,2]`)))
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	h, _ := setupHandlers(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
