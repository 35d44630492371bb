package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

const (
	// LatestPointerName is the file inside the backup directory naming the newest snapshot.
	LatestPointerName = "latest"

	snapshotSuffix = ".bak"
	tempPattern    = ".lockupdater-tmp-*"
	dirMode        = 0o775
	pointerMode    = 0o664
	maxCollisions  = 1000
)

var snapshotNamePattern = regexp.MustCompile(
	`^(.+)_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})(?:-(\d+))?\.bak$`,
)

// FileSnapshotRepository keeps lock snapshots as plain files in a backup directory.
type FileSnapshotRepository struct {
	now func() time.Time
}

// NewFileSnapshotRepository creates a snapshot store using the wall clock.
func NewFileSnapshotRepository() *FileSnapshotRepository {
	return &FileSnapshotRepository{now: time.Now}
}

// NewFileSnapshotRepositoryWithClock creates a snapshot store with a fixed time source.
func NewFileSnapshotRepositoryWithClock(now func() time.Time) *FileSnapshotRepository {
	return &FileSnapshotRepository{now: now}
}

// Backup copies lockPath into backupDir under a timestamp-derived name.
func (it *FileSnapshotRepository) Backup(lockPath, backupDir string) (entities.LockSnapshot, error) {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: reading %s: %w", entities.ErrBackup, lockPath, err)
	}
	info, err := os.Stat(lockPath)
	if err != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: %w", entities.ErrBackup, err)
	}

	if mkErr := os.MkdirAll(backupDir, dirMode); mkErr != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: creating %s: %w", entities.ErrBackup, backupDir, mkErr)
	}

	createdAt := it.now()
	id, path, err := it.freeName(backupDir, filepath.Base(lockPath), createdAt)
	if err != nil {
		return entities.LockSnapshot{}, err
	}

	if writeErr := writeAtomic(path, content, info.Mode().Perm()); writeErr != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: writing %s: %w", entities.ErrBackup, path, writeErr)
	}
	pointer := filepath.Join(backupDir, LatestPointerName)
	if writeErr := writeAtomic(pointer, []byte(filepath.Base(path)+"\n"), pointerMode); writeErr != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: updating latest pointer: %w", entities.ErrBackup, writeErr)
	}

	logger.Infof("Backed up %s to %s", lockPath, path)
	return entities.LockSnapshot{
		ID:        id,
		Path:      path,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// Restore copies the snapshot file over targetPath. The snapshot is re-read from
// disk so a vanished backup is detected rather than masked by the in-memory copy.
func (it *FileSnapshotRepository) Restore(snapshot entities.LockSnapshot, targetPath string) error {
	if snapshot.IsZero() {
		return fmt.Errorf("%w: no snapshot to restore", entities.ErrBackup)
	}
	content, err := os.ReadFile(snapshot.Path)
	if err != nil {
		return fmt.Errorf("%w: reading snapshot %s: %w", entities.ErrBackup, snapshot.Path, err)
	}

	mode := fs.FileMode(pointerMode)
	if info, statErr := os.Stat(targetPath); statErr == nil {
		mode = info.Mode().Perm()
	}
	if writeErr := writeAtomic(targetPath, content, mode); writeErr != nil {
		return fmt.Errorf("%w: restoring %s: %w", entities.ErrBackup, targetPath, writeErr)
	}

	logger.Infof("Restored %s from snapshot %s", targetPath, snapshot.ID)
	return nil
}

// Prune removes the oldest snapshots beyond keep. The snapshot named by the
// latest pointer is always retained.
func (it *FileSnapshotRepository) Prune(backupDir string, keep int) ([]string, error) {
	snapshots, err := it.List(backupDir)
	if err != nil {
		return nil, err
	}
	if len(snapshots) <= keep {
		return nil, nil
	}

	latest := readPointer(backupDir)
	var removed []string
	var errs []error
	for _, snap := range snapshots[keep:] {
		if filepath.Base(snap.Path) == latest {
			continue
		}
		if rmErr := os.Remove(snap.Path); rmErr != nil {
			errs = append(errs, rmErr)
			continue
		}
		removed = append(removed, snap.Path)
	}

	if len(removed) > 0 {
		logger.Infof("Pruned %d old snapshot(s) from %s", len(removed), backupDir)
	}
	return removed, errors.Join(errs...)
}

// List returns the snapshots in backupDir, newest first. Content is not loaded.
func (it *FileSnapshotRepository) List(backupDir string) ([]entities.LockSnapshot, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots in %s: %w", backupDir, err)
	}

	type ordered struct {
		snapshot entities.LockSnapshot
		counter  int
	}
	var found []ordered
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := snapshotNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		createdAt, parseErr := time.ParseInLocation(entities.SnapshotIDLayout, match[2], time.Local)
		if parseErr != nil {
			continue
		}
		counter := 0
		if match[3] != "" {
			counter, _ = strconv.Atoi(match[3])
		}
		found = append(found, ordered{
			snapshot: entities.LockSnapshot{
				ID:        strings.TrimSuffix(strings.TrimPrefix(entry.Name(), match[1]+"_"), snapshotSuffix),
				Path:      filepath.Join(backupDir, entry.Name()),
				CreatedAt: createdAt,
			},
			counter: counter,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].snapshot.CreatedAt.Equal(found[j].snapshot.CreatedAt) {
			return found[i].snapshot.CreatedAt.After(found[j].snapshot.CreatedAt)
		}
		return found[i].counter > found[j].counter
	})

	snapshots := make([]entities.LockSnapshot, 0, len(found))
	for _, item := range found {
		snapshots = append(snapshots, item.snapshot)
	}
	return snapshots, nil
}

// Latest loads the snapshot named by the latest pointer, including its content.
func (it *FileSnapshotRepository) Latest(backupDir string) (entities.LockSnapshot, error) {
	name := readPointer(backupDir)
	if name == "" {
		return entities.LockSnapshot{}, fmt.Errorf("%w: no latest snapshot in %s", entities.ErrBackup, backupDir)
	}

	path := filepath.Join(backupDir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return entities.LockSnapshot{}, fmt.Errorf("%w: reading %s: %w", entities.ErrBackup, path, err)
	}

	snapshot := entities.LockSnapshot{Path: path, Content: content}
	if match := snapshotNamePattern.FindStringSubmatch(name); match != nil {
		snapshot.ID = strings.TrimSuffix(strings.TrimPrefix(name, match[1]+"_"), snapshotSuffix)
		snapshot.CreatedAt, _ = time.ParseInLocation(entities.SnapshotIDLayout, match[2], time.Local)
	}
	return snapshot, nil
}

// freeName picks the first unused snapshot name for the given time.
func (it *FileSnapshotRepository) freeName(backupDir, lockName string, at time.Time) (string, string, error) {
	base := at.Format(entities.SnapshotIDLayout)
	for counter := 0; counter < maxCollisions; counter++ {
		id := base
		if counter > 0 {
			id = base + "-" + strconv.Itoa(counter)
		}
		path := filepath.Join(backupDir, lockName+"_"+id+snapshotSuffix)
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			return id, path, nil
		}
	}
	return "", "", fmt.Errorf("%w: too many snapshots named %s in %s", entities.ErrBackup, base, backupDir)
}

func readPointer(backupDir string) string {
	data, err := os.ReadFile(filepath.Join(backupDir, LatestPointerName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// writeAtomic writes content to a temporary file next to dst and renames it into place.
func writeAtomic(dst string, content []byte, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err = tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, dst)
}
