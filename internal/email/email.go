// Package email delivers poems written by the assistant.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"costumedesk/internal/platform/config"
	"costumedesk/internal/platform/metrics"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/validation"
)

// Message is one outgoing email.
type Message struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender when a host is configured and a logging sender
// otherwise.
func New(cfg config.SMTPConfig, logger *slog.Logger, m *metrics.Metrics) Sender {
	if cfg.Host == "" {
		return &LogSender{logger: logger, metrics: m}
	}
	return &SMTPSender{cfg: cfg, logger: logger, metrics: m, send: smtp.SendMail}
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := validation.Validate(msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email not sent, smtp not configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body_length", len(msg.Body),
	)
	if s.metrics != nil {
		s.metrics.IncrementEmail("logged")
	}
	return nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers through an SMTP relay with PLAIN auth when credentials are set.
type SMTPSender struct {
	cfg     config.SMTPConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	send    sendFunc
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := validation.Validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{msg.To}, compose(s.cfg.From, msg)); err != nil {
		s.count("error")
		s.logger.ErrorContext(ctx, "failed to send email", "error", err, "smtp_host", s.cfg.Host)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "email delivery failed")
	}
	s.count("sent")
	s.logger.InfoContext(ctx, "email sent", "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementEmail(outcome)
	}
}

// compose renders an RFC 5322 message. Header values are stripped of line
// breaks so model output cannot inject headers.
func compose(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(msg.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
