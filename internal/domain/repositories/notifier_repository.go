package repositories

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// NotifierRepository delivers run reports to the notification's recipients.
type NotifierRepository interface {
	Notify(ctx context.Context, notification entities.Notification) error
}
