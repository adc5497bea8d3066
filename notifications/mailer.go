// Package notifications delivers outbound email through SendGrid.
package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message is one email to one recipient
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
	Plain   string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer sends email through the SendGrid v3 API
type SendGridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendGridMailer returns a mailer sending as fromName <fromEmail>
func NewSendGridMailer(apiKey, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers msg. A non-2xx answer from SendGrid is an error.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		zap.S().Errorw("sendgrid returned error status",
			"status", response.StatusCode,
			"body", response.Body)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}
