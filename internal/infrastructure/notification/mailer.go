// Package notification delivers operator emails over SMTP.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const defaultSMTPTimeout = 15 * time.Second

// ErrInvalidMessage is returned for messages that cannot be addressed or encoded
var ErrInvalidMessage = shared.NewDomainError("INVALID_MAIL_MESSAGE", "Mail message is invalid")

// Attachment is a file attached to a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is a plain-text email
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends email messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// sender is the part of *mail.Client the SMTP mailer uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends messages through an SMTP relay
type SMTPMailer struct {
	client sender
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer from the mail configuration. No connection is
// made until the first Send.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail sender address is required")
	}

	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(timeout),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return newSMTPMailer(client, cfg.From, logger), nil
}

func newSMTPMailer(client sender, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		client: client,
		from:   from,
		logger: logger.Named("mailer"),
	}
}

// Send builds and delivers msg. SMTP failures are returned as-is so callers can retry.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	mm, err := m.buildMsg(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		m.logger.Warn("SMTP delivery failed",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("Mail sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *SMTPMailer) buildMsg(msg *Message) (*mail.Msg, error) {
	if msg == nil || len(msg.To) == 0 {
		return nil, shared.NewDomainError(ErrInvalidMessage.Code, "Mail message has no recipient")
	}

	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return nil, shared.NewDomainErrorWithCause(ErrInvalidMessage.Code, "Invalid sender address", err)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, shared.NewDomainErrorWithCause(ErrInvalidMessage.Code, "Invalid recipient address", err)
	}
	mm.Subject(msg.Subject)
	mm.SetDate()
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		opts := []mail.FileOption{}
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := mm.AttachReader(a.Name, bytes.NewReader(a.Data), opts...); err != nil {
			return nil, shared.NewDomainErrorWithCause(ErrInvalidMessage.Code, "Failed to attach "+a.Name, err)
		}
	}
	return mm, nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("mail.tls must be 'mandatory', 'opportunistic' or 'none', got %q", name)
	}
}

// LogMailer logs messages instead of sending them. It stands in when mail is disabled.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send logs the message envelope
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	if msg == nil || len(msg.To) == 0 {
		return ErrInvalidMessage
	}
	m.logger.Info("Mail disabled, message not sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

// New returns the SMTP mailer when mail is enabled and the log mailer otherwise
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	if !cfg.Enabled {
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(cfg, logger)
}
