package sqlite

import "fmt"

// Config holds SQLite connection settings.
type Config struct {
	DatabasePath string
}

// Validate implements storage.StorageConfig.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// GetType implements storage.StorageConfig.
func (c *Config) GetType() string {
	return "sqlite"
}

// GetConnectionString implements storage.StorageConfig.
func (c *Config) GetConnectionString() string {
	return c.DatabasePath
}

// DefaultConfig returns the stock SQLite configuration.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "./hook_engine.db",
	}
}
