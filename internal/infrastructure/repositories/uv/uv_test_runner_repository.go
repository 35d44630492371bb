package uv

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

// TestRunnerRepository runs the project's configured test command inside its environment.
type TestRunnerRepository struct {
	runner shell.Runner
}

// NewTestRunnerRepository creates a new TestRunnerRepository.
func NewTestRunnerRepository(runner shell.Runner) *TestRunnerRepository {
	return &TestRunnerRepository{runner: runner}
}

// Run executes the test command, e.g. "uv run ./run_tests.py".
func (it *TestRunnerRepository) Run(ctx context.Context, project *entities.Project) entities.CommandResult {
	result := it.runner.Run(ctx, shell.Request{
		Dir:     project.Dir,
		Args:    project.TestCommand,
		Env:     Environment(project),
		Timeout: project.Timeouts.Tests,
	})
	logger.Infof("[uv] tests %s", result.Summary())
	return result
}
