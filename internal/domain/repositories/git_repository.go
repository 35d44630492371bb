package repositories

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// GitRepository commits the refreshed lock file to the tracked branch.
type GitRepository interface {
	// RunTransaction pulls, stages the lock file, commits and pushes, stopping at the first failure.
	RunTransaction(ctx context.Context, project *entities.Project, message string) entities.GitTransactionResult

	// Push pushes the tracked branch once more, for callers retrying a failed push.
	Push(ctx context.Context, project *entities.Project) entities.GitStepResult
}
