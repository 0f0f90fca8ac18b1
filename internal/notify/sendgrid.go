package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridAPI is the subset of the SendGrid client used for delivery.
type SendGridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender sends emails via the SendGrid API.
type SendGridSender struct {
	client    SendGridAPI
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSendGridSender creates a sender backed by a real SendGrid client.
func NewSendGridSender(apiKey, fromEmail, fromName string, logger *zap.Logger) *SendGridSender {
	return NewSendGridSenderWithClient(sendgrid.NewSendClient(apiKey), fromEmail, fromName, logger)
}

// NewSendGridSenderWithClient creates a sender around the given client.
func NewSendGridSenderWithClient(client SendGridAPI, fromEmail, fromName string, logger *zap.Logger) *SendGridSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridSender{client: client, fromEmail: fromEmail, fromName: fromName, logger: logger}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", zap.Int("status", response.StatusCode), zap.String("to", msg.To))
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Int("status", response.StatusCode))
	return nil
}

var _ Sender = (*SendGridSender)(nil)
