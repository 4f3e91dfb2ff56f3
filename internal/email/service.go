package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Service sends email alerts. Send returns a provider message id when
// one is available.
type Service interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) Send(ctx context.Context, to, subject, body string) (string, error) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	// gomail has no context support; bound the send with the caller's
	// deadline by racing it against ctx.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("email send aborted: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
	}

	// SMTP exposes no delivery id.
	return "", nil
}
