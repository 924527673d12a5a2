package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/config"
)

func TestValidAddress(t *testing.T) {
	valid := []string{"ops@example.com", "a.b@mail.example.co.uk", "x+tag@sub.example.org"}
	for _, addr := range valid {
		assert.True(t, ValidAddress(addr), addr)
	}

	invalid := []string{"", "no-at-sign", "@example.com", "a@b@c.com", "user@nodot"}
	for _, addr := range invalid {
		assert.False(t, ValidAddress(addr), addr)
	}
}

func TestSend_RejectsWhenDisabled(t *testing.T) {
	cfg := config.Load()
	cfg.SMTPEnabled = false

	service := NewService(cfg, logging.NewDefaultLogger())
	err := service.Send(context.Background(), "ops@example.com", "s", "b")
	assert.ErrorContains(t, err, "not enabled")
}

func TestSend_RejectsBadAddress(t *testing.T) {
	cfg := config.Load()
	cfg.SMTPEnabled = true
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "no-reply@example.com"

	service := NewService(cfg, logging.NewDefaultLogger())
	err := service.Send(context.Background(), "nonsense", "s", "b")
	assert.ErrorContains(t, err, "invalid email address")
}
