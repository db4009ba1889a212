package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender dispatches transactional mail. Dispatch is best-effort everywhere
// it is used: a failed send is logged by the caller and never fails the
// enclosing operation.
type Sender interface {
	Send(to, subject, plain, html string) error
}

// SendGridSender sends mail through the SendGrid API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender returns a sender using the given API key and verified
// sender address.
func NewSendGridSender(apiKey, fromName, fromAddress string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

var _ Sender = &SendGridSender{}

// Send dispatches a single mail.
func (s *SendGridSender) Send(to, subject, plain, html string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), plain, html)
	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("err sending email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("err sending email: sendgrid responded with status %d", response.StatusCode)
	}
	return nil
}
