package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/campushaiti/campushaiti/internal/observability/logger"
)

// SendgridMailer delivers mail through the SendGrid v3 API.
type SendgridMailer struct {
	key  string
	from *sgmail.Email
}

// NewSendgridMailer creates a SendGrid-backed mailer.
func NewSendgridMailer(apiKey, fromName, fromAddress string) *SendgridMailer {
	return &SendgridMailer{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromAddress),
	}
}

// Send delivers msg. Failures are logged, never returned.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) {
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	mail := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.TextBody, "")

	client := sendgrid.NewSendClient(m.key)
	resp, err := client.SendWithContext(ctx, mail)
	if err != nil {
		slog.ErrorContext(ctx, "sendgrid delivery failed",
			logger.Component("mailer"),
			logger.Email(msg.ToAddress),
			logger.Error(err),
		)
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		slog.ErrorContext(ctx, "sendgrid rejected message",
			logger.Component("mailer"),
			logger.Email(msg.ToAddress),
			logger.StatusCode(resp.StatusCode),
			logger.String("response", resp.Body),
		)
	}
}
