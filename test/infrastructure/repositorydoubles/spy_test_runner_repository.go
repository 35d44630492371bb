//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyTestRunnerRepository returns Results in order; once exhausted, the last one repeats.
// An empty Results list means every run passes.
type SpyTestRunnerRepository struct {
	Results []entities.CommandResult
	Calls   int
}

var _ repositories.TestRunnerRepository = (*SpyTestRunnerRepository)(nil)

func (s *SpyTestRunnerRepository) Run(_ context.Context, _ *entities.Project) entities.CommandResult {
	s.Calls++
	if len(s.Results) == 0 {
		return entities.CommandResult{Args: []string{"uv", "run", "./run_tests.py"}}
	}
	idx := s.Calls - 1
	if idx >= len(s.Results) {
		idx = len(s.Results) - 1
	}
	return s.Results[idx]
}
