//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// StubPreconditionRepository returns Err from every check.
type StubPreconditionRepository struct {
	Err   error
	Calls int
}

var _ repositories.PreconditionRepository = (*StubPreconditionRepository)(nil)

func (s *StubPreconditionRepository) Check(_ *entities.Project) error {
	s.Calls++
	return s.Err
}
