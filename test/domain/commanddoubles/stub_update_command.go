//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// StubUpdateCommand is a stub implementation of commands.Update.
type StubUpdateCommand struct {
	ExecuteCallCount int
	Attempt          *entities.UpdateAttempt
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.UpdateOptions
}

var _ commands.Update = (*StubUpdateCommand)(nil)

func (s *StubUpdateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.UpdateOptions,
) (*entities.UpdateAttempt, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	attempt := s.Attempt
	if attempt == nil {
		attempt = &entities.UpdateAttempt{Disposition: entities.DispositionNoChange}
	}
	return attempt, s.ExecuteErr
}
