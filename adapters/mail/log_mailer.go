package mail

import (
	"context"

	"kpireport/internal"
	"kpireport/models"
)

// LogMailer writes the email to the log instead of sending it
type LogMailer struct {
	logger *internal.Logger
}

// NewLogMailer creates a mailer for dry runs
func NewLogMailer(logger *internal.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("Mailer")}
}

func (m *LogMailer) Send(ctx context.Context, email *models.Email) error {
	m.logger.Info("DRY RUN: email not sent (to=%v, subject=%q)", email.To, email.Subject)
	m.logger.Info("%s", email.HTMLBody)
	for _, a := range email.Attachments {
		m.logger.Info("attachment %s (%s, %d bytes)", a.Filename, a.ContentType, len(a.Content))
		m.logger.Debug("%s", a.Content)
	}
	return nil
}
