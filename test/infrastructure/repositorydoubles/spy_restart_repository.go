//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyRestartRepository counts restart signals.
type SpyRestartRepository struct {
	Err   error
	Calls int
}

var _ repositories.RestartRepository = (*SpyRestartRepository)(nil)

func (s *SpyRestartRepository) SignalRestart(_ *entities.Project) error {
	s.Calls++
	return s.Err
}
