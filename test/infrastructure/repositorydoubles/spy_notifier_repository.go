//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories"
)

// SpyNotifierRepository records every notification it is asked to deliver.
type SpyNotifierRepository struct {
	Err           error
	Notifications []entities.Notification
}

var _ repositories.NotifierRepository = (*SpyNotifierRepository)(nil)

func (s *SpyNotifierRepository) Notify(_ context.Context, notification entities.Notification) error {
	s.Notifications = append(s.Notifications, notification)
	return s.Err
}

// Registry returns a notifier registry whose every channel resolves to this spy.
func (s *SpyNotifierRepository) Registry() *infraRepos.NotifierRegistry {
	reg := infraRepos.NewNotifierRegistry()
	factory := func(_ entities.EmailSettings) repositories.NotifierRepository { return s }
	reg.Register(infraRepos.NotifierSMTP, factory)
	reg.Register(infraRepos.NotifierLog, factory)
	return reg
}
