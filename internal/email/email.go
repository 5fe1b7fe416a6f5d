package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResetLink builds the password reset email for link.
func ResetLink(to, link string, ttl time.Duration) Message {
	escaped := html.EscapeString(link)
	return Message{
		To:      to,
		Subject: "Reset your admin console password",
		HTML: fmt.Sprintf(
			`<p>Use the link below to choose a new password (expires in %d minutes):</p><p><a href="%s">%s</a></p><p>If you did not ask for this, ignore this email.</p>`,
			int(ttl.Minutes()), escaped, escaped,
		),
	}
}

// LogSender writes emails to the log instead of delivering them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "email")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not delivered (local dev)", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}

// ResendSender delivers emails through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return NewLogSender(logger)
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
