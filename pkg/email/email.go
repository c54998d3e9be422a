package email

import (
	"context"
	"fmt"

	"github.com/richxcame/carmarket/pkg/config"
	"github.com/richxcame/carmarket/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a single outbound email
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	from   string
	dialer dialer
}

// NewSMTPSender builds a sender from SMTP settings
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send implements Sender
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email recipient is empty")
	}
	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	logger.WithContext(ctx).Debug("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTPSender) build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	return m
}

// NoopSender logs and drops mail; used when SMTP is disabled
type NoopSender struct{}

// Send implements Sender
func (NoopSender) Send(ctx context.Context, msg Message) error {
	logger.WithContext(ctx).Debug("Email dropped, SMTP disabled", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// InquiryReceived builds the email telling a seller about a new buyer inquiry
func InquiryReceived(sellerEmail, sellerName, carTitle, buyerName, inquiryMessage string) Message {
	return Message{
		To:      sellerEmail,
		Subject: fmt.Sprintf("New inquiry for your %s", carTitle),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\n%s sent an inquiry about your listing \"%s\":\n\n%s\n\nReply from your CarMarket inbox.\n",
			sellerName, buyerName, carTitle, inquiryMessage,
		),
	}
}
