package uv

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

// ResyncRepository drives "uv sync" for the project's tier group.
type ResyncRepository struct {
	runner shell.Runner
}

// NewResyncRepository creates a new ResyncRepository.
func NewResyncRepository(runner shell.Runner) *ResyncRepository {
	return &ResyncRepository{runner: runner}
}

// Upgrade runs "uv sync --upgrade --group <tier>", rewriting the lock file.
func (it *ResyncRepository) Upgrade(ctx context.Context, project *entities.Project) entities.CommandResult {
	return it.sync(ctx, project, "--upgrade")
}

// Frozen runs "uv sync --frozen --group <tier>", installing exactly what the lock pins.
func (it *ResyncRepository) Frozen(ctx context.Context, project *entities.Project) entities.CommandResult {
	return it.sync(ctx, project, "--frozen")
}

func (it *ResyncRepository) sync(ctx context.Context, project *entities.Project, mode string) entities.CommandResult {
	result := it.runner.Run(ctx, shell.Request{
		Dir:     project.Dir,
		Args:    []string{project.ToolPath, "sync", mode, "--group", project.ResyncGroup()},
		Env:     Environment(project),
		Timeout: project.Timeouts.Resync,
	})
	logger.Debugf("[uv] sync %s: %s", mode, result.Summary())
	return result
}

// Environment points uv at the project's virtual environment.
func Environment(project *entities.Project) []string {
	if project.VenvDir == "" {
		return nil
	}
	return []string{"UV_PROJECT_ENVIRONMENT=" + project.VenvDir}
}
