package postgres

import (
	"fmt"
	"strconv"

	"hook-engine/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		return NewAdapter(configFromGeneric(c))
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func configFromGeneric(c storage.GenericConfig) *Config {
	pgConfig := &Config{SSLMode: "prefer"}
	if host, ok := c["host"].(string); ok {
		pgConfig.Host = host
	}
	switch port := c["port"].(type) {
	case int:
		pgConfig.Port = port
	case string:
		if n, err := strconv.Atoi(port); err == nil {
			pgConfig.Port = n
		}
	}
	if database, ok := c["database"].(string); ok {
		pgConfig.Database = database
	}
	if username, ok := c["username"].(string); ok {
		pgConfig.Username = username
	}
	if password, ok := c["password"].(string); ok {
		pgConfig.Password = password
	}
	if sslMode, ok := c["sslmode"].(string); ok && sslMode != "" {
		pgConfig.SSLMode = sslMode
	}
	return pgConfig
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}
