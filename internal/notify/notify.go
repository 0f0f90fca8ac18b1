package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/pkg/config"
)

// Message is a single transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// Sender delivers email messages. Callers treat a returned error as fatal for
// the operation that triggered the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the sender selected by cfg.Driver. awsCfg is only used for SES.
func New(cfg config.EmailConfig, awsCfg aws.Config, logger *zap.Logger) (Sender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", config.EmailDriverLog:
		return NewLogSender(logger), nil
	case config.EmailDriverSES:
		return NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.FromAddress, cfg.FromName, logger), nil
	case config.EmailDriverSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("notify: sendgrid driver requires SENDGRID_API_KEY")
		}
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, logger), nil
	default:
		return nil, fmt.Errorf("notify: unknown email driver %q", cfg.Driver)
	}
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("email not delivered (log driver)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

var _ Sender = (*LogSender)(nil)
