// mailer/mailer.go
// Package mailer delivers outgoing mail: registration confirmations, event
// announcements and welcome messages. Delivery is asynchronous through
// Queue so a slow SMTP server never holds up a form submission.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one email. At least one of TextBody and HTMLBody is set.
type Message struct {
	ID       string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m Message) check() error {
	if len(m.To) == 0 {
		return errors.New("mailer: no recipients")
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return errors.New("mailer: empty body")
	}
	return nil
}

// Transport sends a single message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the smtp_* settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// SMTPTransport sends through an SMTP relay with go-mail. Port 465 uses
// implicit TLS; any other port requires STARTTLS.
type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	m := mail.NewMsg()
	var err error
	if t.cfg.FromName != "" {
		err = m.FromFormat(t.cfg.FromName, t.cfg.From)
	} else {
		err = m.From(t.cfg.From)
	}
	if err != nil {
		return fmt.Errorf("mailer: from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("mailer: to address: %w", err)
	}
	if msg.ID != "" {
		m.SetMessageIDWithValue(msg.ID)
	}
	m.Subject(msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password))
	}
	if t.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	c, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// LogTransport only logs messages. It is used when no smtp_host is set.
type LogTransport struct {
	Logger *zap.Logger
}

func (t LogTransport) Send(_ context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}
	l := t.Logger
	if l == nil {
		l = zap.NewNop()
	}
	l.Info("mail (not sent, no smtp_host)",
		zap.String("id", msg.ID),
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject))
	return nil
}
