package notify

import (
	"context"
	"log/slog"

	"github.com/campushaiti/campushaiti/internal/observability/logger"
)

// ConsoleMailer logs messages instead of sending them. Default backend
// for development and tests.
type ConsoleMailer struct{}

// NewConsoleMailer creates a console mailer.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// Send logs the message.
func (m *ConsoleMailer) Send(ctx context.Context, msg Message) {
	slog.InfoContext(ctx, "email (console backend)",
		logger.Component("mailer"),
		logger.Email(msg.ToAddress),
		logger.String("subject", msg.Subject),
		logger.String("body", msg.TextBody),
	)
}
