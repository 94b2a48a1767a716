package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"devconnector/internal/logging"
	"devconnector/internal/metrics"
)

// Mail is one outbound plain-text message.
type Mail struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

const sendgridHost = "https://api.sendgrid.com"

// SendGridMailer delivers through the SendGrid v3 mail/send API.
type SendGridMailer struct {
	apiKey   string
	host     string
	fromAddr string
	fromName string
}

func NewSendGridMailer(apiKey, fromAddr, fromName string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, host: sendgridHost, fromAddr: fromAddr, fromName: fromName}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Mail) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, "")

	req := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		metrics.MailDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if resp.StatusCode >= 300 {
		metrics.MailDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}

	metrics.MailDeliveries.WithLabelValues("sent").Inc()
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when no
// SendGrid key is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{log: logging.For("mailer")}
}

// Send logs the recipient at info. The body carries reset tokens and only
// shows up at debug.
func (m *LogMailer) Send(_ context.Context, msg Mail) error {
	m.log.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("mail not sent, no provider configured")
	m.log.Debug().
		Str("to", msg.ToEmail).
		Str("body", msg.Text).
		Msg("unsent mail body")
	metrics.MailDeliveries.WithLabelValues("logged").Inc()
	return nil
}
