package repositories

import "github.com/rios0rios0/lockupdater/internal/domain/entities"

// SnapshotRepository stores timestamped backups of the lock file.
type SnapshotRepository interface {
	// Backup copies the lock file into backupDir and records it as the latest snapshot.
	Backup(lockPath, backupDir string) (entities.LockSnapshot, error)

	// Restore copies the snapshot, read back from disk, over targetPath.
	Restore(snapshot entities.LockSnapshot, targetPath string) error

	// Prune deletes the oldest snapshots beyond keep, never the latest one.
	Prune(backupDir string, keep int) ([]string, error)

	// List returns the retained snapshots, newest first, without their content.
	List(backupDir string) ([]entities.LockSnapshot, error)

	// Latest returns the snapshot named by the latest pointer.
	Latest(backupDir string) (entities.LockSnapshot, error)
}
