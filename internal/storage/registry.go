package storage

import (
	"fmt"
	"sync"
)

// Registry maps storage type names to factories. Adapter packages register
// themselves in init.
type Registry struct {
	factories map[string]StorageFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StorageFactory),
	}
}

// Register adds a factory for a storage type.
func (r *Registry) Register(storageType string, factory StorageFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[storageType] = factory
}

// Create instantiates storage of the given type.
func (r *Registry) Create(storageType string, config StorageConfig) (Storage, error) {
	r.mu.RLock()
	factory, exists := r.factories[storageType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("storage type %s not registered", storageType)
	}

	return factory.Create(config)
}

// GetAvailableTypes lists the registered storage types.
func (r *Registry) GetAvailableTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for storageType := range r.factories {
		types = append(types, storageType)
	}
	return types
}

// DefaultRegistry is the process-wide registry used by adapter packages.
var DefaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(storageType string, factory StorageFactory) {
	DefaultRegistry.Register(storageType, factory)
}

// Create instantiates storage from the default registry.
func Create(storageType string, config StorageConfig) (Storage, error) {
	return DefaultRegistry.Create(storageType, config)
}
