// Package outreach delivers generated outreach email over SMTP. Delivery is
// optional: without SMTP configuration the mailer reports itself disabled
// and the API returns content without sending it.
package outreach

import (
	"fmt"

	gomail "gopkg.in/mail.v2"

	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/config"
)

// Sender delivers a single outreach email.
type Sender interface {
	Enabled() bool
	Send(to, subject, body string) error
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	cfg    config.SMTP
	logger *zap.Logger
}

// NewMailer builds a mailer from SMTP settings.
func NewMailer(cfg config.SMTP, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Enabled reports whether SMTP settings are present.
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled()
}

// Send delivers one plain-text email.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send outreach email: %w", err)
	}

	m.logger.Info("outreach email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
