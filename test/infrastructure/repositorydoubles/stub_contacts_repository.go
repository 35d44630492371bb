//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// StubContactsRepository returns fixed administrators.
type StubContactsRepository struct {
	Admins []entities.AdminContact
	Err    error
}

var _ repositories.ContactsRepository = (*StubContactsRepository)(nil)

func (s *StubContactsRepository) ProjectAdmins(_ *entities.Project) ([]entities.AdminContact, error) {
	return s.Admins, s.Err
}
