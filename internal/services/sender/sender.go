// Package sender отправляет письма пользователям через SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/lib/smtp"
	"github.com/magabrotheeeer/natours/internal/metrics"
)

// Transport открывает SMTP-сессию.
type Transport interface {
	Connect(ctx context.Context) (smtp.Client, error)
	From() string
}

// Service отправляет текстовые письма.
type Service struct {
	transport Transport
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
		now:       time.Now,
	}
}

// Send отправляет письмо с темой subject и текстом body на адрес to.
func (s *Service) Send(ctx context.Context, to, subject, body string) (err error) {
	const op = "services.sender.Send"
	log := s.log.With(slog.String("op", op))
	defer func() { metrics.RecordEmail(err) }()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	from, err := mail.ParseAddress(s.transport.From())
	if err != nil {
		return fmt.Errorf("%s: parse from: %w", op, err)
	}
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%s: parse to: %w", op, err)
	}

	client, err := s.transport.Connect(ctx)
	if err != nil {
		log.Error("failed to connect to SMTP server", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from.Address); err != nil {
		log.Error("failed to set MAIL FROM", slog.String("from", from.Address), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(rcpt.Address); err != nil {
		log.Error("failed to set RCPT TO", slog.String("recipient", rcpt.Address), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := wc.Write([]byte(s.message(from, rcpt, subject, body))); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		log.Error("failed to close Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email sent successfully", slog.String("to", rcpt.Address))
	return nil
}

func (s *Service) message(from, to *mail.Address, subject, body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Join([]string{
		"From: " + from.String(),
		"To: " + to.String(),
		"Subject: " + mime.QEncoding.Encode("UTF-8", subject),
		"Date: " + s.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		strings.ReplaceAll(body, "\n", "\r\n"),
	}, "\r\n")
}
