package repositories

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// TestRunnerRepository runs the managed project's own test suite.
// Any non-zero exit counts as a failure.
type TestRunnerRepository interface {
	Run(ctx context.Context, project *entities.Project) entities.CommandResult
}
