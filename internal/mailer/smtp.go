package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	HostPort string
	TLS      *tls.Config
	User     string
	Password string
	Hello    string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) dial() (*smtp.Client, error) {
	var (
		client *smtp.Client
		err    error
	)
	if s.cfg.TLS != nil {
		client, err = smtp.DialTLS(s.cfg.HostPort, s.cfg.TLS)
	} else {
		client, err = smtp.Dial(s.cfg.HostPort)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to smtp server: %w", err)
	}

	if s.cfg.Hello != "" {
		if err := client.Hello(s.cfg.Hello); err != nil {
			client.Close()
			return nil, fmt.Errorf("could not greet upstream: %w", err)
		}
	}

	if s.cfg.User != "" || s.cfg.Password != "" {
		if err := client.Auth(sasl.NewLoginClient(s.cfg.User, s.cfg.Password)); err != nil {
			client.Close()
			return nil, fmt.Errorf("AUTH failed: %w", err)
		}
	}
	return client, nil
}

// Send performs one SMTP transaction per message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(msg.From, nil); err != nil {
		return fmt.Errorf("smtp server rejected mail from '%s': %w", msg.From, err)
	}
	for _, address := range msg.To {
		if err := client.Rcpt(address, nil); err != nil {
			return fmt.Errorf("smtp server rejected mail to '%s': %w", address, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp server rejected request to send mail data: %w", err)
	}
	if err := msg.Write(writer); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp server rejected mail data: %w", err)
	}

	if err := client.Quit(); err != nil {
		smtpErr := &smtp.SMTPError{}
		// Some relays answer QUIT with 250 instead of 221.
		if errors.As(err, &smtpErr) && smtpErr.Code == 250 {
			return nil
		}
		return err
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is used
// when no SMTP relay is configured.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("smtp not configured, email not delivered",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.PlainBody),
	)
	return nil
}
