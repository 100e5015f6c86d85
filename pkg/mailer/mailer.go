package mailer

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
)

// Message is a fully composed email ready for delivery
type Message struct {
	To       string
	CC       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers composed email messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailgunConfig holds Mailgun API configuration
type MailgunConfig struct {
	APIKey    string
	Domain    string
	APIBase   string
	FromName  string
	FromEmail string
}

// MailgunSender sends email through the Mailgun HTTP API
type MailgunSender struct {
	client *mailgun.MailgunImpl
	config MailgunConfig
}

// NewMailgunSender creates a sender backed by the Mailgun API
func NewMailgunSender(config MailgunConfig) *MailgunSender {
	client := mailgun.NewMailgun(config.Domain, config.APIKey)
	if config.APIBase != "" {
		client.SetAPIBase(config.APIBase)
	}
	return &MailgunSender{client: client, config: config}
}

// Send delivers a message through Mailgun
func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)

	m := s.client.NewMessage(from, msg.Subject, msg.TextBody, msg.To)
	if msg.HTMLBody != "" {
		m.SetHtml(msg.HTMLBody)
	}
	if msg.CC != "" {
		m.AddCC(msg.CC)
	}

	_, _, err := s.client.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// NoopSender logs messages instead of sending them. Used when no email
// provider is configured so development environments never email anyone.
type NoopSender struct {
	logger *logrus.Logger
}

// NewNoopSender creates a sender that only logs
func NewNoopSender(logger *logrus.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and returns nil
func (s *NoopSender) Send(_ context.Context, msg Message) error {
	s.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email sending disabled, message dropped")
	return nil
}
