package uv

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

// AssetRebuildRepository runs trigger commands such as Django's collectstatic.
type AssetRebuildRepository struct {
	runner shell.Runner
}

// NewAssetRebuildRepository creates a new AssetRebuildRepository.
func NewAssetRebuildRepository(runner shell.Runner) *AssetRebuildRepository {
	return &AssetRebuildRepository{runner: runner}
}

// Rebuild runs the trigger's command in the project directory.
func (it *AssetRebuildRepository) Rebuild(
	ctx context.Context,
	project *entities.Project,
	trigger entities.AssetTrigger,
) entities.CommandResult {
	result := it.runner.Run(ctx, shell.Request{
		Dir:     project.Dir,
		Args:    trigger.Command,
		Env:     Environment(project),
		Timeout: project.Timeouts.Rebuild,
	})
	if !result.OK() {
		logger.Warnf("[uv] rebuild for %s %s: %s", trigger.Package, result.Summary(), result.Output())
	}
	return result
}
