// Package mailer sends report notifications over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Config is the SMTP transport configuration.
type Config struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	To       string        `yaml:"to"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Normalize fills defaults: port 587, 30s timeout, From and To fall back to Username.
func (c Config) Normalize() Config {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.From == "" {
		c.From = c.Username
	}
	if c.To == "" {
		c.To = c.Username
	}
	return c
}

// Validate reports missing required transport fields as a *domain.ConfigError.
func (c Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.Username == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if len(missing) > 0 {
		return &domain.ConfigError{Field: "smtp", Err: fmt.Errorf("missing %s", strings.Join(missing, ", "))}
	}
	return nil
}

// Sender delivers a prepared message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// Notifier implements ports.Notifier.
type Notifier struct {
	cfg    Config
	sender Sender
	logger *slog.Logger
}

// NewNotifier validates cfg and returns a Notifier. A nil sender uses SMTP.
func NewNotifier(cfg Config, sender Sender, logger *slog.Logger) (*Notifier, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sender == nil {
		sender = NewSMTPSender(cfg)
	}
	return &Notifier{cfg: cfg, sender: sender, logger: logger}, nil
}

// Notify sends msg to the configured recipient with its attachment.
func (n *Notifier) Notify(ctx context.Context, msg ports.Message) error {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return &domain.ConfigError{Field: "EMAIL_FROM", Err: err}
	}
	if err := m.To(n.cfg.To); err != nil {
		return &domain.ConfigError{Field: "EMAIL_TO", Err: err}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, PlainText(msg.HTMLBody))
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)

	if msg.Attachment != "" {
		if _, err := os.Stat(msg.Attachment); err != nil {
			return &domain.BuildError{Op: "attach report", Err: err}
		}
		m.AttachFile(msg.Attachment, mail.WithFileContentType(contentTypeFor(msg.Attachment)))
	}

	n.logger.Info("Connecting to SMTP", "host", n.cfg.Host, "port", n.cfg.Port, "user", n.cfg.Username)
	if err := n.sender.Send(ctx, m); err != nil {
		var ne *domain.NotifyError
		if errors.As(err, &ne) {
			return err
		}
		return &domain.NotifyError{Op: "send", Err: err}
	}
	n.logger.Info("Email sent", "to", n.cfg.To, "attachment", filepath.Base(msg.Attachment))
	return nil
}

// Recipient returns the configured destination address.
func (n *Notifier) Recipient() string {
	return n.cfg.To
}

// SMTPSender sends messages with a go-mail client using STARTTLS and PLAIN auth.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg.Normalize()}
}

// Send dials the server, authenticates and delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return &domain.NotifyError{Op: "create smtp client", Err: err}
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &domain.NotifyError{Op: "dial and send", Err: err}
	}
	return nil
}

func contentTypeFor(path string) mail.ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return mail.ContentType(xlsxContentType)
	case ".csv":
		return mail.ContentType("text/csv")
	case ".pdf":
		return mail.ContentType("application/pdf")
	default:
		return mail.ContentType("application/octet-stream")
	}
}

var (
	tagPattern   = regexp.MustCompile(`<[^<]+?>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// PlainText is the fallback text part: tags stripped, whitespace collapsed.
func PlainText(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
