package repositories

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// AssetRebuildRepository runs the rebuild command bound to a trigger package.
type AssetRebuildRepository interface {
	Rebuild(ctx context.Context, project *entities.Project, trigger entities.AssetTrigger) entities.CommandResult
}
