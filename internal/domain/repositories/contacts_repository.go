package repositories

import "github.com/rios0rios0/lockupdater/internal/domain/entities"

// ContactsRepository reads the administrators responsible for a project.
type ContactsRepository interface {
	ProjectAdmins(project *entities.Project) ([]entities.AdminContact, error)
}
