package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is an outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages to a recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   string
}

func NewSendGrid(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	email := sgmail.NewSingleEmail(
		sgmail.NewEmail("", m.from),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		"",
		msg.HTML,
	)
	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
