// Package storage defines the persistence boundary for hook definitions and
// their append-only execution history, with pluggable database adapters.
package storage

import (
	"context"

	"hook-engine/internal/hooks"
)

// Storage is the full persistence surface. It includes hooks.Store, so any
// adapter can back the trigger engine directly.
//
// Hook rows are soft-deleted only; HookExecution rows are append-only and no
// adapter exposes a way to update or delete them.
type Storage interface {
	Close() error
	Health() error

	// Hook definitions (admin CRUD surface)
	CreateHook(ctx context.Context, hook *hooks.Hook) error
	GetHook(ctx context.Context, id string) (*hooks.Hook, error)
	ListHooks(ctx context.Context, filters HookFilters, limit, offset int) ([]*hooks.Hook, int, error)
	UpdateHook(ctx context.Context, hook *hooks.Hook) error
	SoftDeleteHook(ctx context.Context, id string) error

	// Trigger engine surface (hooks.Store)
	ActiveHooksForEvent(ctx context.Context, event string) ([]*hooks.Hook, error)
	CreateExecution(ctx context.Context, execution *hooks.HookExecution) error

	// Execution history (admin read surface)
	GetExecution(ctx context.Context, id string) (*hooks.HookExecution, error)
	ListExecutions(ctx context.Context, filters ExecutionFilters, limit, offset int) ([]*hooks.HookExecution, int, error)
}

// HookFilters narrows hook listings.
type HookFilters struct {
	Event  string
	Active *bool
}

// ExecutionFilters narrows execution history listings.
type ExecutionFilters struct {
	HookID  string
	Success *bool
}

// StorageConfig is the adapter-specific connection configuration.
type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory creates adapters of one storage type.
type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}
