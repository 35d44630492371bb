package repositories

import "github.com/rios0rios0/lockupdater/internal/domain/entities"

// PreconditionRepository checks that the project may be updated at all.
type PreconditionRepository interface {
	// Check returns an error wrapping entities.ErrPrecondition describing the first unmet condition.
	Check(project *entities.Project) error
}
