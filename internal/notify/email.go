package notify

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP settings for the staff mailbox
type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string
}

// EmailChannel delivers notifications over SMTP
type EmailChannel struct {
	cfg EmailConfig
}

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Configured() bool {
	return c.cfg.Host != "" && c.cfg.Port > 0 && c.cfg.Recipient != "" && c.cfg.From != ""
}

// compose renders the notification as an HTML email with a plain-text
// alternative for clients that cannot display HTML
func (c *EmailChannel) compose(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", c.cfg.From)
	m.SetHeader("To", c.cfg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	// multipart/alternative prefers the last part, so the HTML
	// rendition goes after the plain-text fallback
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	return m
}

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	m := c.compose(msg)

	dialer := gomail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.Username, c.cfg.Password)

	// gomail has no context support, so run the dial in a goroutine and
	// abandon it when the deadline fires.
	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %v", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
