// Package email provides the SMTP-backed email service used by the email
// action handler.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"hook-engine/internal/common/logging"
	"hook-engine/internal/config"
)

// Service sends email through the configured SMTP server. It implements
// the actions.EmailService boundary.
type Service struct {
	config *config.Config
	logger logging.Logger
}

// NewService creates a new email service.
func NewService(cfg *config.Config, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Service{config: cfg, logger: logger}
}

// Send sends a plain-text email.
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	if !s.config.SMTPEnabled {
		return fmt.Errorf("SMTP is not enabled")
	}
	if !ValidAddress(to) {
		return fmt.Errorf("invalid email address %q", to)
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.config.SMTPFrom),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n"

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)

	// smtp.SendMail upgrades to STARTTLS when the server offers it
	if err := smtp.SendMail(addr, auth, s.config.SMTPFrom, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("Email sent",
		logging.String("to", to),
		logging.String("subject", subject))
	return nil
}

// ValidAddress performs basic email address validation.
func ValidAddress(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 {
		return false
	}
	return strings.Contains(parts[1], ".")
}
