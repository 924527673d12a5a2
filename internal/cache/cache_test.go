package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage"
)

// countingStore tracks how often the underlying adapter is hit.
type countingStore struct {
	hooks map[string][]*hooks.Hook
	byID  map[string]*hooks.Hook
	reads int
}

func newCountingStore() *countingStore {
	return &countingStore{
		hooks: make(map[string][]*hooks.Hook),
		byID:  make(map[string]*hooks.Hook),
	}
}

func (s *countingStore) Close() error  { return nil }
func (s *countingStore) Health() error { return nil }

func (s *countingStore) ActiveHooksForEvent(ctx context.Context, event string) ([]*hooks.Hook, error) {
	s.reads++
	return s.hooks[event], nil
}

func (s *countingStore) CreateHook(ctx context.Context, hook *hooks.Hook) error {
	s.hooks[hook.Event] = append(s.hooks[hook.Event], hook)
	s.byID[hook.ID] = hook
	return nil
}

func (s *countingStore) GetHook(ctx context.Context, id string) (*hooks.Hook, error) {
	if hook, ok := s.byID[id]; ok {
		return hook, nil
	}
	return nil, errNotFound
}

func (s *countingStore) ListHooks(ctx context.Context, filters storage.HookFilters, limit, offset int) ([]*hooks.Hook, int, error) {
	return nil, 0, nil
}

func (s *countingStore) UpdateHook(ctx context.Context, hook *hooks.Hook) error {
	s.byID[hook.ID] = hook
	return nil
}

func (s *countingStore) SoftDeleteHook(ctx context.Context, id string) error {
	if hook, ok := s.byID[id]; ok {
		delete(s.byID, id)
		remaining := s.hooks[hook.Event][:0]
		for _, h := range s.hooks[hook.Event] {
			if h.ID != id {
				remaining = append(remaining, h)
			}
		}
		s.hooks[hook.Event] = remaining
	}
	return nil
}

func (s *countingStore) CreateExecution(ctx context.Context, execution *hooks.HookExecution) error {
	return nil
}

func (s *countingStore) GetExecution(ctx context.Context, id string) (*hooks.HookExecution, error) {
	return nil, errNotFound
}

func (s *countingStore) ListExecutions(ctx context.Context, filters storage.ExecutionFilters, limit, offset int) ([]*hooks.HookExecution, int, error) {
	return nil, 0, nil
}

var errNotFound = &notFoundError{}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "not found" }

func setupCache(t *testing.T) (*CachedStorage, *countingStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := newCountingStore()
	cached := NewWithClient(inner, rdb, 30*time.Second, logging.NewDefaultLogger())
	return cached, inner, mr
}

func eventHook(id, event string) *hooks.Hook {
	return &hooks.Hook{
		ID:       id,
		Name:     "hook-" + id,
		Event:    event,
		IsActive: true,
		Actions:  []hooks.ActionSpec{{Type: hooks.ActionWebhook}},
	}
}

func TestCachedStorage_ReadThrough(t *testing.T) {
	cached, inner, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, inner.CreateHook(ctx, eventHook("h1", "order.created")))

	first, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, inner.reads)

	// Second read is served from Redis.
	second, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "h1", second[0].ID)
	assert.Equal(t, 1, inner.reads)
}

func TestCachedStorage_EmptyResultIsCached(t *testing.T) {
	cached, inner, _ := setupCache(t)
	ctx := context.Background()

	result, err := cached.ActiveHooksForEvent(ctx, "ghost.event")
	require.NoError(t, err)
	assert.Empty(t, result)

	_, err = cached.ActiveHooksForEvent(ctx, "ghost.event")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads)
}

func TestCachedStorage_WriteInvalidates(t *testing.T) {
	cached, inner, _ := setupCache(t)
	ctx := context.Background()

	_, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Equal(t, 1, inner.reads)

	require.NoError(t, cached.CreateHook(ctx, eventHook("h1", "order.created")))

	result, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 2, inner.reads)
}

func TestCachedStorage_UpdateInvalidatesOldAndNewEvent(t *testing.T) {
	cached, inner, _ := setupCache(t)
	ctx := context.Background()

	hook := eventHook("h1", "order.created")
	require.NoError(t, cached.CreateHook(ctx, hook))

	// Warm both event keys.
	_, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	_, err = cached.ActiveHooksForEvent(ctx, "order.updated")
	require.NoError(t, err)
	require.Equal(t, 2, inner.reads)

	moved := eventHook("h1", "order.updated")
	require.NoError(t, cached.UpdateHook(ctx, moved))

	_, err = cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	_, err = cached.ActiveHooksForEvent(ctx, "order.updated")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.reads)
}

func TestCachedStorage_DeleteInvalidates(t *testing.T) {
	cached, inner, _ := setupCache(t)
	ctx := context.Background()

	hook := eventHook("h1", "order.created")
	require.NoError(t, cached.CreateHook(ctx, hook))

	warm, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Len(t, warm, 1)

	require.NoError(t, cached.SoftDeleteHook(ctx, hook.ID))

	result, err := cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, 2, inner.reads)
}

func TestCachedStorage_TTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := newCountingStore()
	cached := NewWithClient(inner, rdb, time.Second, logging.NewDefaultLogger())
	ctx := context.Background()

	require.NoError(t, inner.CreateHook(ctx, eventHook("h1", "order.created")))

	_, err = cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	require.Equal(t, 1, inner.reads)

	mr.FastForward(2 * time.Second)

	_, err = cached.ActiveHooksForEvent(ctx, "order.created")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.reads)
}
