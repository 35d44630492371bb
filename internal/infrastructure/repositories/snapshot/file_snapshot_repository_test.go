//go:build unit

package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/snapshot"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func writeLock(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "uv.lock")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestFileSnapshotRepository_Backup(t *testing.T) {
	t.Parallel()

	t.Run("should store a byte-identical copy and point latest at it", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		backupDir := filepath.Join(dir, "backups")
		lockPath := writeLock(t, dir, "version = 1\n")
		at := time.Date(2026, 3, 1, 4, 30, 0, 0, time.Local)
		repo := snapshot.NewFileSnapshotRepositoryWithClock(fixedClock(at))

		// when
		snap, err := repo.Backup(lockPath, backupDir)

		// then
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01T04-30-00", snap.ID)
		assert.Equal(t, filepath.Join(backupDir, "uv.lock_2026-03-01T04-30-00.bak"), snap.Path)
		stored, readErr := os.ReadFile(snap.Path)
		require.NoError(t, readErr)
		assert.Equal(t, "version = 1\n", string(stored))
		pointer, readErr := os.ReadFile(filepath.Join(backupDir, snapshot.LatestPointerName))
		require.NoError(t, readErr)
		assert.Equal(t, "uv.lock_2026-03-01T04-30-00.bak\n", string(pointer))
		info, statErr := os.Stat(snap.Path)
		require.NoError(t, statErr)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("should suffix a counter when two snapshots share a second", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		lockPath := writeLock(t, dir, "a\n")
		at := time.Date(2026, 3, 1, 4, 30, 0, 0, time.Local)
		repo := snapshot.NewFileSnapshotRepositoryWithClock(fixedClock(at))

		// when
		first, firstErr := repo.Backup(lockPath, dir)
		second, secondErr := repo.Backup(lockPath, dir)

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.Equal(t, "2026-03-01T04-30-00", first.ID)
		assert.Equal(t, "2026-03-01T04-30-00-1", second.ID)
		latest, err := repo.Latest(dir)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
	})

	t.Run("should fail with a backup error when the lock file is missing", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		repo := snapshot.NewFileSnapshotRepository()

		// when
		_, err := repo.Backup(filepath.Join(dir, "uv.lock"), filepath.Join(dir, "backups"))

		// then
		require.ErrorIs(t, err, entities.ErrBackup)
		_, statErr := os.Stat(filepath.Join(dir, "backups", snapshot.LatestPointerName))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestFileSnapshotRepository_Restore(t *testing.T) {
	t.Parallel()

	t.Run("should restore byte for byte and be idempotent", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		lockPath := writeLock(t, dir, "before\n")
		repo := snapshot.NewFileSnapshotRepository()
		snap, err := repo.Backup(lockPath, filepath.Join(dir, "backups"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(lockPath, []byte("after\n"), 0o640))

		// when
		firstErr := repo.Restore(snap, lockPath)
		secondErr := repo.Restore(snap, lockPath)

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		content, readErr := os.ReadFile(lockPath)
		require.NoError(t, readErr)
		assert.Equal(t, "before\n", string(content))
	})

	t.Run("should fail when the snapshot file vanished", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		lockPath := writeLock(t, dir, "before\n")
		repo := snapshot.NewFileSnapshotRepository()
		snap, err := repo.Backup(lockPath, filepath.Join(dir, "backups"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(snap.Path))

		// when
		restoreErr := repo.Restore(snap, lockPath)

		// then
		require.ErrorIs(t, restoreErr, entities.ErrBackup)
	})

	t.Run("should refuse a zero snapshot", func(t *testing.T) {
		t.Parallel()

		// given
		repo := snapshot.NewFileSnapshotRepository()

		// when
		err := repo.Restore(entities.LockSnapshot{}, filepath.Join(t.TempDir(), "uv.lock"))

		// then
		require.ErrorIs(t, err, entities.ErrBackup)
	})
}

func TestFileSnapshotRepository_Prune(t *testing.T) {
	t.Parallel()

	t.Run("should keep the newest snapshots", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		backupDir := filepath.Join(dir, "backups")
		lockPath := writeLock(t, dir, "x\n")
		repo := snapshot.NewFileSnapshotRepositoryWithClock(
			steppingClock(time.Date(2026, 3, 1, 4, 30, 0, 0, time.Local)))
		for range 5 {
			_, err := repo.Backup(lockPath, backupDir)
			require.NoError(t, err)
		}

		// when
		removed, err := repo.Prune(backupDir, 2)

		// then
		require.NoError(t, err)
		assert.Len(t, removed, 3)
		remaining, listErr := repo.List(backupDir)
		require.NoError(t, listErr)
		require.Len(t, remaining, 2)
		assert.Equal(t, "2026-03-01T04-30-04", remaining[0].ID)
		assert.Equal(t, "2026-03-01T04-30-03", remaining[1].ID)
	})

	t.Run("should never remove the snapshot named by latest", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		backupDir := filepath.Join(dir, "backups")
		lockPath := writeLock(t, dir, "x\n")
		repo := snapshot.NewFileSnapshotRepositoryWithClock(
			steppingClock(time.Date(2026, 3, 1, 4, 30, 0, 0, time.Local)))
		oldest, err := repo.Backup(lockPath, backupDir)
		require.NoError(t, err)
		for range 3 {
			_, backupErr := repo.Backup(lockPath, backupDir)
			require.NoError(t, backupErr)
		}
		pointer := filepath.Join(backupDir, snapshot.LatestPointerName)
		require.NoError(t, os.WriteFile(pointer, []byte(filepath.Base(oldest.Path)+"\n"), 0o664))

		// when
		removed, pruneErr := repo.Prune(backupDir, 1)

		// then
		require.NoError(t, pruneErr)
		assert.Len(t, removed, 2)
		assert.FileExists(t, oldest.Path)
	})

	t.Run("should do nothing for a missing directory", func(t *testing.T) {
		t.Parallel()

		// given
		repo := snapshot.NewFileSnapshotRepository()

		// when
		removed, err := repo.Prune(filepath.Join(t.TempDir(), "missing"), 3)

		// then
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}

func TestFileSnapshotRepository_List(t *testing.T) {
	t.Parallel()

	t.Run("should ignore unrelated files", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "uv.lock_2026-03-01T04-30-00.bak"), []byte("x"), 0o600))
		repo := snapshot.NewFileSnapshotRepository()

		// when
		snapshots, err := repo.List(dir)

		// then
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, "2026-03-01T04-30-00", snapshots[0].ID)
		assert.Nil(t, snapshots[0].Content)
	})
}
