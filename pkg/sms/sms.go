package sms

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers short text notifications
type Sender interface {
	Send(to, body string) error
}

// TwilioConfig holds Twilio API credentials
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioSender sends SMS through the Twilio REST API
type TwilioSender struct {
	client *twilio.RestClient
	config TwilioConfig
}

// NewTwilioSender creates a Twilio-backed SMS sender
func NewTwilioSender(config TwilioConfig) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: config.AccountSID,
			Password: config.AuthToken,
		}),
		config: config,
	}
}

// Send delivers an SMS to the given E.164 number
func (s *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.config.FromNumber)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp.Sid == nil {
		return fmt.Errorf("SMS accepted but no SID returned for %s", to)
	}

	return nil
}

// NoopSender logs SMS messages instead of sending them
type NoopSender struct {
	logger *logrus.Logger
}

// NewNoopSender creates an SMS sender that only logs
func NewNoopSender(logger *logrus.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and returns nil
func (s *NoopSender) Send(to, _ string) error {
	s.logger.WithField("to", to).Info("SMS sending disabled, message dropped")
	return nil
}
