// Package email delivers transactional mail for the lead pipeline.
package email

import (
	"context"

	"solarlead_backend/platform/config"
)

// Sender is the outbound email surface used by the notification module.
type Sender interface {
	// SendEscalationEmail notifies the team about a follow-up that reached
	// the highest escalation level.
	SendEscalationEmail(ctx context.Context, toEmail, leadName, leadURL string, daysOverdue int) error
}

// NoopSender is used when no SMTP server is configured.
type NoopSender struct{}

func (NoopSender) SendEscalationEmail(context.Context, string, string, string, int) error {
	return nil
}

// NewSender picks the sender implementation based on configuration: SMTP when
// configured and enabled, a no-op otherwise.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
