//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpySnapshotRepository wraps a real snapshot store and lets tests inject failures.
type SpySnapshotRepository struct {
	repositories.SnapshotRepository

	BackupErr    error
	RestoreErr   error
	RestoreCalls int
	PruneCalls   int
}

var _ repositories.SnapshotRepository = (*SpySnapshotRepository)(nil)

func (s *SpySnapshotRepository) Backup(lockPath, backupDir string) (entities.LockSnapshot, error) {
	if s.BackupErr != nil {
		return entities.LockSnapshot{}, s.BackupErr
	}
	return s.SnapshotRepository.Backup(lockPath, backupDir)
}

func (s *SpySnapshotRepository) Restore(snapshot entities.LockSnapshot, targetPath string) error {
	s.RestoreCalls++
	if s.RestoreErr != nil {
		return s.RestoreErr
	}
	return s.SnapshotRepository.Restore(snapshot, targetPath)
}

func (s *SpySnapshotRepository) Prune(backupDir string, keep int) ([]string, error) {
	s.PruneCalls++
	return s.SnapshotRepository.Prune(backupDir, keep)
}
