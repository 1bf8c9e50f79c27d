package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ErrMailDisabled is returned when email delivery is not configured.
var ErrMailDisabled = errors.New("email delivery is not configured")

// Mailer sends rendered reports by email through resend. It is optional;
// without an API key every send returns ErrMailDisabled.
type Mailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewMailer creates a mailer. An empty API key disables delivery.
func NewMailer(apiKey, fromEmail string, logger *slog.Logger) *Mailer {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}

	return &Mailer{
		client: client,
		from:   fromEmail,
		logger: logger,
	}
}

// Enabled reports whether email delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.client != nil
}

// SendReport emails the rendered HTML report.
func (m *Mailer) SendReport(ctx context.Context, to, filename, html string) error {
	if m.client == nil {
		return ErrMailDisabled
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Your financial report for %s", filename),
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	m.logger.Info("report emailed",
		slog.String("to", to),
		slog.String("email_id", sent.Id),
	)
	return nil
}
