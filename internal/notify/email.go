package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// SMTPSettings configures the email transport.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	// ImplicitTLS selects SMTPS (a TLS connection from the first byte,
	// port 465 style) instead of plain SMTP with AUTH.
	ImplicitTLS bool
}

// EmailNotifier implements Notifier over SMTP.
type EmailNotifier struct {
	cfg      SMTPSettings
	log      *slog.Logger
	transmit func(e *email.Email) error
}

// NewEmailNotifier creates an EmailNotifier.
func NewEmailNotifier(cfg SMTPSettings, opts ...EmailOption) *EmailNotifier {
	n := &EmailNotifier{
		cfg: cfg,
		log: slog.Default(),
	}
	n.transmit = n.smtpSend
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// EmailOption configures an EmailNotifier.
type EmailOption func(*EmailNotifier)

// WithEmailLogger sets a custom logger.
func WithEmailLogger(l *slog.Logger) EmailOption {
	return func(n *EmailNotifier) {
		n.log = l
	}
}

// WithTransport replaces the SMTP transmission step. Used by tests to
// capture messages without a mail server.
func WithTransport(fn func(e *email.Email) error) EmailOption {
	return func(n *EmailNotifier) {
		n.transmit = fn
	}
}

// Send renders the payload and delivers it to the configured recipient.
func (n *EmailNotifier) Send(_ context.Context, p *Payload) error {
	subject, body := buildMessage(p)

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{n.cfg.To}
	e.Subject = subject
	e.Text = []byte(body)

	if err := n.transmit(e); err != nil {
		return fmt.Errorf("sending mail to %s: %w", n.cfg.To, err)
	}

	n.log.Info("notification mail sent", "to", n.cfg.To, "subject", subject)
	return nil
}

func (n *EmailNotifier) smtpSend(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	if n.cfg.ImplicitTLS {
		return e.SendWithTLS(addr, auth, &tls.Config{ServerName: n.cfg.Host})
	}
	return e.Send(addr, auth)
}
