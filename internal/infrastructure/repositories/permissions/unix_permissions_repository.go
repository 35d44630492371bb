package permissions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

const (
	groupWritable    = 0o020
	reconcileTimeout = 5 * time.Minute
)

// UnixPermissionsRepository inspects and fixes group ownership with chgrp/chmod.
type UnixPermissionsRepository struct {
	runner shell.Runner
}

// NewUnixPermissionsRepository creates a new UnixPermissionsRepository.
func NewUnixPermissionsRepository(runner shell.Runner) *UnixPermissionsRepository {
	return &UnixPermissionsRepository{runner: runner}
}

// DetectGroup returns the group owning most of dir's direct entries.
// Ties resolve to the alphabetically first group name.
func (it *UnixPermissionsRepository) DetectGroup(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		name, nameErr := groupName(info)
		if nameErr != nil {
			continue
		}
		counts[name]++
	}
	if len(counts) == 0 {
		return "", fmt.Errorf("no group information found in %s", dir)
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best, nil
}

// Audit walks every path and reports entries with the wrong group or without group write.
// Symlinks are skipped and missing paths are ignored.
func (it *UnixPermissionsRepository) Audit(group string, paths []string) []string {
	var problems []string
	for _, root := range paths {
		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if !errors.Is(walkErr, fs.ErrNotExist) {
					problems = append(problems, fmt.Sprintf("%s: cannot stat: %v", path, walkErr))
				}
				return nil
			}
			if path == root || entry.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			info, err := entry.Info()
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: cannot stat: %v", path, err))
				return nil
			}
			if name, nameErr := groupName(info); nameErr != nil {
				problems = append(problems, fmt.Sprintf("%s: cannot determine group: %v", path, nameErr))
			} else if name != group {
				problems = append(problems, fmt.Sprintf("%s: incorrect group: expected %s, got %s", path, group, name))
			}
			if info.Mode().Perm()&groupWritable == 0 {
				problems = append(problems, path+": not group-writable")
			}
			return nil
		})
	}
	return problems
}

// Reconcile runs "chgrp -R <group>" and "chmod -R g=rwX" on every existing path.
// Every path is attempted; failures are joined into one error.
func (it *UnixPermissionsRepository) Reconcile(ctx context.Context, group string, paths []string) error {
	if group == "" {
		return errors.New("no group to reconcile against")
	}

	var errs []error
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Debugf("[permissions] skipping missing %s", path)
			continue
		}
		for _, args := range [][]string{
			{"chgrp", "-R", group, path},
			{"chmod", "-R", "g=rwX", path},
		} {
			result := it.runner.Run(ctx, shell.Request{Args: args, Timeout: reconcileTimeout})
			if !result.OK() {
				errs = append(errs, fmt.Errorf("%s %s: %s", result.CommandLine(), result.Summary(), result.Output()))
			}
		}
	}
	return errors.Join(errs...)
}

func groupName(info fs.FileInfo) (string, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", errors.New("ownership not available on this platform")
	}
	gid := strconv.FormatUint(uint64(stat.Gid), 10)
	group, err := user.LookupGroupId(gid)
	if err != nil {
		return gid, nil //nolint:nilerr // unnamed groups are reported by id
	}
	return group.Name, nil
}
