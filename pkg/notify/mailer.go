// Package notify delivers the report over authenticated SMTP submission.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

// Config holds the outbound mail settings. Credentials come from process
// configuration; there are no package-level defaults.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Message is one outbound notification: an HTML body plus an optional file
// attachment.
type Message struct {
	To             string
	Subject        string
	HTMLBody       string
	AttachmentPath string
}

// Sender transmits a message. Implementations report failure as a boolean
// so callers decide how far to escalate.
type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	cfg    Config
	logger *log.Logger
}

// NewMailer creates a mailer from the given config.
func NewMailer(cfg Config, logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.New(log.Writer(), "[mail] ", log.LstdFlags)
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Send transmits the message. Transmission failures are logged and reported
// as false; they never panic or crash the process.
func (m *Mailer) Send(ctx context.Context, msg Message) bool {
	if err := m.send(ctx, msg); err != nil {
		m.logger.Printf("error sending email to %s: %v", msg.To, err)
		return false
	}
	m.logger.Printf("email sent to %s", msg.To)
	return true
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	message := mail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %s: %w", m.cfg.From, err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %s: %w", msg.To, err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	if msg.AttachmentPath != "" {
		message.AttachFile(msg.AttachmentPath)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	m.logger.Printf("connecting to %s:%d as %s", m.cfg.Host, m.cfg.Port, m.cfg.Username)
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("SMTP transmission failed: %w", err)
	}
	return nil
}
