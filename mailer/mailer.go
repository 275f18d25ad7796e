// Package mailer delivers account and order emails.
package mailer

//go:generate mockgen -source=mailer.go -destination=mock_mailer.go -package=mailer

import (
	"context"
	"fmt"
	"strings"

	"foodonline-api/config"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer sends one rendered message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends HTML mail through an SMTP relay.
type SMTPMailer struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

func NewSMTPMailer(cfg config.EmailConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		logger: logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("send %q: empty recipient", subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogMailer only logs messages. Used when SMTP is not configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	// bodies hold live account links and are logged at debug only
	m.logger.Warn().Str("to", to).Str("subject", subject).Msg("smtp not configured, email logged only")
	m.logger.Debug().Str("to", to).Str("subject", subject).Str("body", body).Msg("email body")
	return nil
}

// New picks the SMTP mailer when configured and the log mailer otherwise.
func New(cfg config.EmailConfig, logger zerolog.Logger) Mailer {
	if cfg.Configured() {
		return NewSMTPMailer(cfg, logger)
	}
	return NewLogMailer(logger)
}
