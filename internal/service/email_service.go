package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// CodePurpose определяет, для какого потока отправляется код
type CodePurpose string

const (
	PurposeRegistration  CodePurpose = "registration"
	PurposePasswordReset CodePurpose = "password_reset"
)

// CodeMessage - готовое письмо с кодом
type CodeMessage struct {
	Subject string
	Text    string
	HTML    string
}

// ComposeCodeMessage формирует письмо с кодом для указанного потока
func ComposeCodeMessage(purpose CodePurpose, code string, ttl time.Duration) CodeMessage {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	switch purpose {
	case PurposePasswordReset:
		return CodeMessage{
			Subject: "Сброс пароля",
			Text:    fmt.Sprintf("Ваш код сброса пароля: %s (действует %d минут)", code, minutes),
			HTML:    fmt.Sprintf("<p>Ваш код сброса пароля: <strong>%s</strong></p><p>Код действует %d минут.</p>", code, minutes),
		}
	default:
		return CodeMessage{
			Subject: "Код подтверждения регистрации",
			Text:    fmt.Sprintf("Ваш код: %s (действует %d минут)", code, minutes),
			HTML:    fmt.Sprintf("<p>Ваш код: <strong>%s</strong></p><p>Код действует %d минут.</p>", code, minutes),
		}
	}
}

// EmailService sends transactional emails.
type EmailService interface {
	SendCode(ctx context.Context, toEmail string, msg CodeMessage, idempotencyKey string) error
}

// NoopEmailService only logs; used in development.
type NoopEmailService struct {
	log *zap.Logger
}

func NewNoopEmailService(log *zap.Logger) *NoopEmailService {
	return &NoopEmailService{log: log.With(zap.String("component", "email"))}
}

func (s *NoopEmailService) SendCode(ctx context.Context, toEmail string, msg CodeMessage, idempotencyKey string) error {
	// Текст письма содержит код, поэтому пишется только на уровне debug
	s.log.Info("noop email send", zap.String("to", toEmail), zap.String("subject", msg.Subject))
	s.log.Debug("noop email body", zap.String("to", toEmail), zap.String("text", msg.Text))
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendCode(ctx context.Context, toEmail string, msg CodeMessage, idempotencyKey string) error {
	if toEmail == "" || msg.Text == "" {
		return fmt.Errorf("toEmail and message are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}

	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}

// SMTPEmailService sends emails through an SMTP relay.
type SMTPEmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPEmailService(host string, port int, user, password, from string) (*SMTPEmailService, error) {
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &SMTPEmailService{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}, nil
}

// buildMessage собирает MIME-письмо; вынесено для тестов
func (s *SMTPEmailService) buildMessage(toEmail string, msg CodeMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// SendCode отправляет письмо синхронно. gomail не принимает контекст,
// поэтому отмена запроса лишь перестает ждать результат.
func (s *SMTPEmailService) SendCode(ctx context.Context, toEmail string, msg CodeMessage, idempotencyKey string) error {
	if toEmail == "" || msg.Text == "" {
		return fmt.Errorf("toEmail and message are required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.buildMessage(toEmail, msg)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	}
}
