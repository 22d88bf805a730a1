package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Notifier delivers a message to a user's registered address. The auth
// service calls it synchronously for the reset-token email and treats any
// error uniformly as a delivery failure.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailgun implements Notifier over the Mailgun API.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers a plain-text email with a bounded timeout so a hung
// transport cannot hold a pending reset token open indefinitely.
func (m *Mailgun) Send(ctx context.Context, to, subject, body string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, body, to)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}
