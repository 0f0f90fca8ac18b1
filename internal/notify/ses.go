package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESAPI is the subset of the SESv2 client used for delivery.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES.
type SESSender struct {
	client    SESAPI
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSESSender creates a new SES sender.
func NewSESSender(client SESAPI, fromEmail, fromName string, logger *zap.Logger) *SESSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SESSender{client: client, fromEmail: fromEmail, fromName: fromName, logger: logger}
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    &types.Body{},
			},
		},
	}
	if msg.Body != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("ses send failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.logger.Info("email sent via ses", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.String("message_id", aws.ToString(output.MessageId)))
	return nil
}

var _ Sender = (*SESSender)(nil)
