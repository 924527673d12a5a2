// Package cache provides a read-through Redis cache for the hot path of
// event dispatch: the active-hooks-per-event lookup. All other storage
// operations pass through to the underlying adapter, invalidating the
// affected event key on writes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"hook-engine/internal/common/logging"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage"
)

const keyPrefix = "hooks:event:"

type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// CachedStorage wraps a storage adapter with an event-keyed Redis cache.
// Redis failures degrade to direct storage reads; they never fail a request.
type CachedStorage struct {
	inner  storage.Storage
	rdb    *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

func New(inner storage.Storage, config *Config, logger logging.Logger) (*CachedStorage, error) {
	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CachedStorage{
		inner:  inner,
		rdb:    rdb,
		ttl:    config.TTL,
		logger: logger,
	}, nil
}

// NewWithClient wires an existing Redis client, used by tests.
func NewWithClient(inner storage.Storage, rdb *redis.Client, ttl time.Duration, logger logging.Logger) *CachedStorage {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStorage{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedStorage) Close() error {
	if err := c.rdb.Close(); err != nil {
		c.logger.Warn("failed to close Redis client", logging.Err(err))
	}
	return c.inner.Close()
}

func (c *CachedStorage) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return c.inner.Health()
}

func (c *CachedStorage) ActiveHooksForEvent(ctx context.Context, event string) ([]*hooks.Hook, error) {
	key := keyPrefix + event

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var result []*hooks.Hook
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result, nil
		}
		// Corrupt entry, drop it and fall through to storage.
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("hook cache read failed", logging.String("event", event), logging.Err(err))
	}

	result, err := c.inner.ActiveHooksForEvent(ctx, event)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("hook cache write failed", logging.String("event", event), logging.Err(err))
		}
	}

	return result, nil
}

func (c *CachedStorage) CreateHook(ctx context.Context, hook *hooks.Hook) error {
	if err := c.inner.CreateHook(ctx, hook); err != nil {
		return err
	}
	c.invalidate(ctx, hook.Event)
	return nil
}

func (c *CachedStorage) UpdateHook(ctx context.Context, hook *hooks.Hook) error {
	// The event key may change on update; invalidate the previous one too.
	previousEvent := ""
	if existing, err := c.inner.GetHook(ctx, hook.ID); err == nil {
		previousEvent = existing.Event
	}

	if err := c.inner.UpdateHook(ctx, hook); err != nil {
		return err
	}

	c.invalidate(ctx, hook.Event)
	if previousEvent != "" && previousEvent != hook.Event {
		c.invalidate(ctx, previousEvent)
	}
	return nil
}

func (c *CachedStorage) SoftDeleteHook(ctx context.Context, id string) error {
	event := ""
	if existing, err := c.inner.GetHook(ctx, id); err == nil {
		event = existing.Event
	}

	if err := c.inner.SoftDeleteHook(ctx, id); err != nil {
		return err
	}

	if event != "" {
		c.invalidate(ctx, event)
	}
	return nil
}

func (c *CachedStorage) invalidate(ctx context.Context, event string) {
	if err := c.rdb.Del(ctx, keyPrefix+event).Err(); err != nil {
		c.logger.Warn("hook cache invalidation failed", logging.String("event", event), logging.Err(err))
	}
}

func (c *CachedStorage) GetHook(ctx context.Context, id string) (*hooks.Hook, error) {
	return c.inner.GetHook(ctx, id)
}

func (c *CachedStorage) ListHooks(ctx context.Context, filters storage.HookFilters, limit, offset int) ([]*hooks.Hook, int, error) {
	return c.inner.ListHooks(ctx, filters, limit, offset)
}

func (c *CachedStorage) CreateExecution(ctx context.Context, execution *hooks.HookExecution) error {
	return c.inner.CreateExecution(ctx, execution)
}

func (c *CachedStorage) GetExecution(ctx context.Context, id string) (*hooks.HookExecution, error) {
	return c.inner.GetExecution(ctx, id)
}

func (c *CachedStorage) ListExecutions(ctx context.Context, filters storage.ExecutionFilters, limit, offset int) ([]*hooks.HookExecution, int, error) {
	return c.inner.ListExecutions(ctx, filters, limit, offset)
}
