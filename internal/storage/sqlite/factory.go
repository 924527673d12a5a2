package sqlite

import (
	"fmt"

	"hook-engine/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		sqliteConfig := DefaultConfig()
		if path, ok := c["path"].(string); ok && path != "" {
			sqliteConfig.DatabasePath = path
		}
		return NewAdapter(sqliteConfig)
	default:
		return nil, fmt.Errorf("invalid config type for SQLite storage")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	storage.Register("sqlite", &Factory{})
}
