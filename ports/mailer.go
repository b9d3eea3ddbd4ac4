package ports

import (
	"context"

	"kpireport/models"
)

// Mailer delivers a rendered email
type Mailer interface {
	Send(ctx context.Context, email *models.Email) error
}
