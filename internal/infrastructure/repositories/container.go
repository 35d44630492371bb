package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockupdater/internal/domain/repositories"
	contactsRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/contacts"
	gitRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/git"
	notifierRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/notifier"
	permissionsRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/permissions"
	preconditionRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/precondition"
	restartRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/restart"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
	snapshotRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/snapshot"
	uvRepo "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/uv"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register the process runner shared by every command-line adapter
	if err := container.Provide(func() shell.Runner {
		return shell.NewExecRunner()
	}); err != nil {
		return err
	}

	// Register notifier registry with all notification channels
	if err := container.Provide(func() *NotifierRegistry {
		reg := NewNotifierRegistry()
		reg.Register(NotifierSMTP, func(settings entities.EmailSettings) domainRepos.NotifierRepository {
			return notifierRepo.NewSMTPNotifierRepository(settings)
		})
		reg.Register(NotifierLog, func(settings entities.EmailSettings) domainRepos.NotifierRepository {
			return notifierRepo.NewLogNotifierRepository(settings)
		})
		return reg
	}); err != nil {
		return err
	}

	providers := []interface{}{
		func() domainRepos.SnapshotRepository { return snapshotRepo.NewFileSnapshotRepository() },
		func(runner shell.Runner) domainRepos.ResyncRepository { return uvRepo.NewResyncRepository(runner) },
		func(runner shell.Runner) domainRepos.TestRunnerRepository { return uvRepo.NewTestRunnerRepository(runner) },
		func(runner shell.Runner) domainRepos.AssetRebuildRepository {
			return uvRepo.NewAssetRebuildRepository(runner)
		},
		func() domainRepos.RestartRepository { return restartRepo.NewTouchRestartRepository() },
		func(runner shell.Runner) domainRepos.GitRepository { return gitRepo.NewShellGitRepository(runner) },
		func(runner shell.Runner) domainRepos.PermissionsRepository {
			return permissionsRepo.NewUnixPermissionsRepository(runner)
		},
		func() domainRepos.PreconditionRepository { return preconditionRepo.NewGoGitPreconditionRepository() },
		func() domainRepos.ContactsRepository { return contactsRepo.NewDotenvContactsRepository() },
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}

	return nil
}
