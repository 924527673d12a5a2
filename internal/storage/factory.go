package storage

import (
	"fmt"
	"strconv"

	"hook-engine/internal/common/errors"
	"hook-engine/internal/config"
)

// GenericConfig is a map-based StorageConfig handed to adapter factories.
type GenericConfig map[string]interface{}

// Validate implements StorageConfig.
func (gc GenericConfig) Validate() error {
	return nil
}

// GetType implements StorageConfig.
func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

// GetConnectionString implements StorageConfig.
func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// NewStorage creates a storage adapter from application configuration.
func NewStorage(cfg *config.Config) (Storage, error) {
	var storageConfig StorageConfig

	switch cfg.DatabaseType {
	case "sqlite":
		storageConfig = GenericConfig{
			"path": cfg.DatabasePath,
		}

	case "postgres", "postgresql":
		port, err := strconv.Atoi(cfg.PostgresPort)
		if err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("invalid postgres port: %s", cfg.PostgresPort))
		}
		storageConfig = GenericConfig{
			"host":     cfg.PostgresHost,
			"port":     port,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}
		return Create("postgres", storageConfig)

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(cfg.DatabaseType, storageConfig)
}
