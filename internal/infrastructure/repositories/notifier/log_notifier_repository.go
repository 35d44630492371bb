package notifier

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// LogNotifierRepository writes notifications to the log when no mail relay is configured.
type LogNotifierRepository struct{}

// NewLogNotifierRepository creates a new LogNotifierRepository.
func NewLogNotifierRepository(_ entities.EmailSettings) *LogNotifierRepository {
	return &LogNotifierRepository{}
}

// Notify logs the subject and the composed body.
func (it *LogNotifierRepository) Notify(_ context.Context, notification entities.Notification) error {
	logger.WithField("kind", notification.Kind).Infof("%s\n%s", notification.Subject(), ComposeBody(notification))
	return nil
}
