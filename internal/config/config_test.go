package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "./hook_engine.db", cfg.DatabasePath)
	assert.False(t, cfg.HookCacheEnabled)
	assert.False(t, cfg.SMTPEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "hooks")
	t.Setenv("POSTGRES_USER", "svc")
	t.Setenv("WEBHOOK_MAX_RETRIES", "5")
	t.Setenv("WEBHOOK_TIMEOUT", "10s")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, 5, cfg.WebhookMaxRetriesInt())
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeoutDuration())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Load()
		return cfg
	}

	t.Run("bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Port = "notaport"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseType = "mongodb"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres requires host", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseType = "postgres"
		cfg.PostgresHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad webhook retry count", func(t *testing.T) {
		cfg := valid()
		cfg.WebhookMaxRetries = "0"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad cache ttl only matters when cache enabled", func(t *testing.T) {
		cfg := valid()
		cfg.HookCacheTTL = "bogus"
		assert.NoError(t, cfg.Validate())

		cfg.HookCacheEnabled = true
		assert.Error(t, cfg.Validate())
	})

	t.Run("smtp requires host and from", func(t *testing.T) {
		cfg := valid()
		cfg.SMTPEnabled = true
		cfg.SMTPHost = "smtp.example.com"
		cfg.SMTPFrom = ""
		assert.Error(t, cfg.Validate())

		cfg.SMTPFrom = "no-reply@example.com"
		assert.NoError(t, cfg.Validate())
	})
}

func TestDurationHelpersFallBack(t *testing.T) {
	cfg := Load()
	cfg.WebhookTimeout = "garbage"
	cfg.WebhookRetryDelay = "garbage"
	cfg.WebhookMaxRetries = "garbage"
	cfg.HookCacheTTL = "garbage"

	assert.Equal(t, 30*time.Second, cfg.WebhookTimeoutDuration())
	assert.Equal(t, 2*time.Second, cfg.WebhookRetryDelayDuration())
	assert.Equal(t, 3, cfg.WebhookMaxRetriesInt())
	assert.Equal(t, 30*time.Second, cfg.HookCacheTTLDuration())
}
