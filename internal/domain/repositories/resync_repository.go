package repositories

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// ResyncRepository regenerates or reapplies the lock file and the dependency environment.
type ResyncRepository interface {
	// Upgrade resolves the newest allowed versions for the project's tier group.
	Upgrade(ctx context.Context, project *entities.Project) entities.CommandResult

	// Frozen applies the lock file exactly as it is, without resolving.
	Frozen(ctx context.Context, project *entities.Project) entities.CommandResult
}
