package repositories

import "github.com/rios0rios0/lockupdater/internal/domain/entities"

// RestartRepository tells the application server to reload the project.
type RestartRepository interface {
	SignalRestart(project *entities.Project) error
}
