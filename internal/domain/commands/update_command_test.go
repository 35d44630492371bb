//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/snapshot"
	"github.com/rios0rios0/lockupdater/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/lockupdater/test/infrastructure/repositorydoubles"
)

type updateFixture struct {
	dir      string
	lock     string
	settings *entities.Settings

	snapshots     *doubles.SpySnapshotRepository
	resync        *doubles.SpyResyncRepository
	tests         *doubles.SpyTestRunnerRepository
	rebuilds      *doubles.SpyAssetRebuildRepository
	restart       *doubles.SpyRestartRepository
	git           *doubles.SpyGitRepository
	permissions   *doubles.SpyPermissionsRepository
	preconditions *doubles.StubPreconditionRepository
	contacts      *doubles.StubContactsRepository
	notifier      *doubles.SpyNotifierRepository
}

func baseLock() *entitybuilders.UVLockBuilder {
	return entitybuilders.NewUVLockBuilder().
		WithPackage("asgiref", "3.8.1").
		WithPackage("django", "4.2.20").
		WithPackage("sqlparse", "0.5.1")
}

func newUpdateFixture(t *testing.T) *updateFixture {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "shop")
	require.NoError(t, os.Mkdir(dir, 0o755))
	lock := baseLock().BuildLock()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uv.lock"), []byte(lock), 0o644))

	settings, err := entities.NewSettings("")
	require.NoError(t, err)
	preflight := false
	settings.PreflightTests = &preflight
	settings.Git.PushRetryDelay = time.Millisecond
	noRetries := 0
	settings.Git.PushRetries = &noRetries

	return &updateFixture{
		dir:      dir,
		lock:     lock,
		settings: settings,
		snapshots: &doubles.SpySnapshotRepository{
			SnapshotRepository: snapshot.NewFileSnapshotRepository(),
		},
		resync:        &doubles.SpyResyncRepository{},
		tests:         &doubles.SpyTestRunnerRepository{},
		rebuilds:      &doubles.SpyAssetRebuildRepository{},
		restart:       &doubles.SpyRestartRepository{},
		git:           &doubles.SpyGitRepository{TransactionResult: doubles.SuccessfulTransaction()},
		permissions:   &doubles.SpyPermissionsRepository{Group: "www"},
		preconditions: &doubles.StubPreconditionRepository{},
		contacts: &doubles.StubContactsRepository{
			Admins: []entities.AdminContact{{Name: "Ada", Email: "ada@example.org"}},
		},
		notifier: &doubles.SpyNotifierRepository{},
	}
}

func (f *updateFixture) command() *commands.UpdateCommand {
	return commands.NewUpdateCommand(
		f.snapshots,
		f.resync,
		f.tests,
		f.rebuilds,
		f.restart,
		f.git,
		f.permissions,
		f.preconditions,
		f.contacts,
		f.notifier.Registry(),
		entities.NewLockDiffComparator(),
	)
}

func (f *updateFixture) execute(t *testing.T) (*entities.UpdateAttempt, error) {
	t.Helper()
	return f.command().Execute(context.Background(), f.settings, commands.UpdateOptions{
		ProjectDir: f.dir,
		Hostname:   "dweb01",
	})
}

func (f *updateFixture) currentLock(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(f.dir, "uv.lock"))
	require.NoError(t, err)
	return string(content)
}

func TestUpdateCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should finish without commit or notification when the lock is unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionNoChange, attempt.Disposition)
		assert.True(t, attempt.Visited(entities.PhaseNoChangeDone))
		assert.False(t, attempt.Visited(entities.PhaseTest))
		assert.Equal(t, entities.PhaseEnd, attempt.Phase)
		assert.Equal(t, 1, f.resync.UpgradeCalls)
		assert.Zero(t, f.tests.Calls)
		assert.Empty(t, f.git.Messages)
		assert.Empty(t, f.notifier.Notifications)
		assert.Equal(t, 1, f.snapshots.PruneCalls)
		assert.Equal(t, 1, f.permissions.ReconcileCalls)
		assert.Equal(t, "www", f.permissions.LastGroup)
	})

	t.Run("should commit, rebuild assets and notify when tests pass", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		upgraded := baseLock().WithPackage("django", "4.2.27").BuildLock()
		f.resync.UpgradedLock = upgraded

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionApplied, attempt.Disposition)
		assert.Equal(t, upgraded, f.currentLock(t))
		assert.Equal(t, 1, f.tests.Calls)
		assert.Zero(t, f.resync.FrozenCalls)
		require.Len(t, f.rebuilds.Triggers, 1)
		assert.Equal(t, "django", f.rebuilds.Triggers[0].Package)
		assert.Equal(t, 1, f.restart.Calls)
		assert.Equal(t, []string{"auto-updater: updated dependencies\n\n- django 4.2.20 -> 4.2.27"}, f.git.Messages)

		require.Len(t, f.notifier.Notifications, 1)
		notification := f.notifier.Notifications[0]
		assert.Equal(t, entities.NotificationSuccess, notification.Kind)
		assert.Equal(t, "shop", notification.Project)
		assert.Equal(t, entities.TierStaging, notification.Tier)
		assert.Equal(t, []entities.AdminContact{{Name: "Ada", Email: "ada@example.org"}}, notification.Recipients)
		assert.Contains(t, notification.DiffText, `+version = "4.2.27"`)
		assert.Equal(t, attempt.Diff.UnifiedText, notification.DiffText)
	})

	t.Run("should not rebuild assets when the trigger package kept its version", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.resync.UpgradedLock = baseLock().WithPackage("sqlparse", "0.5.3").BuildLock()

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionApplied, attempt.Disposition)
		assert.Empty(t, f.rebuilds.Triggers)
		assert.Equal(t, []string{"auto-updater: updated dependencies\n\n- sqlparse 0.5.1 -> 0.5.3"}, f.git.Messages)
	})

	t.Run("should restore the snapshot byte for byte when tests fail", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.resync.UpgradedLock = baseLock().WithPackage("django", "5.0.1").BuildLock()
		f.tests.Results = []entities.CommandResult{
			{Args: []string{"uv", "run", "./run_tests.py"}, ExitCode: 1, Stdout: "FAILED (failures=3)"},
			{Args: []string{"uv", "run", "./run_tests.py"}},
		}

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionRolledBack, attempt.Disposition)
		assert.Equal(t, f.lock, f.currentLock(t))
		assert.Equal(t, []string{f.lock}, f.resync.FrozenLocks)
		assert.Equal(t, 2, f.tests.Calls)
		assert.True(t, attempt.RollbackVerified())
		assert.NoError(t, attempt.Failure)
		assert.Empty(t, f.git.Messages)
		assert.Empty(t, f.rebuilds.Triggers)
		assert.Equal(t, 1, f.restart.Calls)

		require.Len(t, f.notifier.Notifications, 1)
		notification := f.notifier.Notifications[0]
		assert.Equal(t, entities.NotificationRollback, notification.Kind)
		assert.Equal(t, "FAILED (failures=3)", notification.TestOutput)
		require.NotNil(t, notification.Verification)
		assert.True(t, notification.Verification.OK())
		assert.Equal(t, []entities.Phase{
			entities.PhaseStart,
			entities.PhasePrecondition,
			entities.PhaseSnapshot,
			entities.PhaseResync,
			entities.PhaseDiff,
			entities.PhaseTest,
			entities.PhaseRollback,
			entities.PhaseCleanup,
			entities.PhaseEnd,
		}, attempt.PhaseHistory)
	})

	t.Run("should flag a rollback whose frozen resync failed", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.resync.UpgradedLock = baseLock().WithPackage("django", "5.0.1").BuildLock()
		f.resync.FrozenResult = entities.CommandResult{
			Args:     []string{"uv", "sync", "--frozen", "--group", "staging"},
			ExitCode: 2,
			Stderr:   "error: failed to download",
		}
		f.tests.Results = []entities.CommandResult{
			{ExitCode: 1, Stdout: "FAILED (failures=1)"},
			{ExitCode: 1, Stdout: "ImportError: no module named django"},
		}

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionRolledBack, attempt.Disposition)
		require.ErrorIs(t, attempt.Failure, entities.ErrVerification)
		assert.False(t, attempt.RollbackVerified())
		assert.Equal(t, f.lock, f.currentLock(t))

		require.Len(t, f.notifier.Notifications, 1)
		notification := f.notifier.Notifications[0]
		require.NotNil(t, notification.Verification)
		assert.Equal(t, "error: failed to download", notification.Verification.Output())
		assert.Equal(t, "ImportError: no module named django", notification.RollbackTestOutput)
		assert.Equal(t, "FAILED (failures=1)", notification.TestOutput)
		assert.Contains(t, notification.Cause, "environment may be inconsistent")
	})

	t.Run("should abort before snapshotting when a precondition fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.preconditions.Err = fmt.Errorf("%w: working tree has uncommitted changes", entities.ErrPrecondition)

		// when
		attempt, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		assert.Equal(t, entities.DispositionAborted, attempt.Disposition)
		assert.False(t, attempt.Visited(entities.PhaseSnapshot))
		assert.Zero(t, f.resync.UpgradeCalls)
		assert.NoDirExists(t, f.dir+"_lock_backups")
		require.Len(t, f.notifier.Notifications, 1)
		assert.Equal(t, entities.NotificationPrecondition, f.notifier.Notifications[0].Kind)
		assert.Contains(t, f.notifier.Notifications[0].Cause, "uncommitted changes")
	})

	t.Run("should fall back to configured admins when project contacts are unreadable", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.contacts.Err = fmt.Errorf("%w: ADMINS_JSON is missing", entities.ErrPrecondition)
		f.settings.SysAdmins = []entities.AdminContact{{Email: "root@example.org"}}

		// when
		_, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		require.Len(t, f.notifier.Notifications, 1)
		assert.Equal(t, []entities.AdminContact{{Email: "root@example.org"}}, f.notifier.Notifications[0].Recipients)
	})

	t.Run("should abort when group permissions are wrong", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.permissions.AuditProblems = []string{"/srv/apps/shop/.venv/bin: not group-writable"}

		// when
		_, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		assert.Contains(t, err.Error(), "not group-writable")
		assert.Zero(t, f.resync.UpgradeCalls)
	})

	t.Run("should abort when tests fail before updating", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		preflight := true
		f.settings.PreflightTests = &preflight
		f.tests.Results = []entities.CommandResult{{ExitCode: 1, Stdout: "broken already"}}

		// when
		_, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrPrecondition)
		assert.Contains(t, err.Error(), "broken already")
		assert.Zero(t, f.resync.UpgradeCalls)
	})

	t.Run("should abort without resyncing when the backup fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.snapshots.BackupErr = fmt.Errorf("%w: disk full", entities.ErrBackup)

		// when
		attempt, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrBackup)
		assert.Equal(t, entities.DispositionAborted, attempt.Disposition)
		assert.Zero(t, f.resync.UpgradeCalls)
		assert.Empty(t, f.git.Messages)
		require.Len(t, f.notifier.Notifications, 1)
		assert.Equal(t, entities.NotificationAborted, f.notifier.Notifications[0].Kind)
	})

	t.Run("should restore and abort when the resync fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.resync.UpgradedLock = "half-written\n"
		f.resync.UpgradeResult = entities.CommandResult{
			Args:     []string{"uv", "sync", "--upgrade", "--group", "staging"},
			ExitCode: 1,
			Stderr:   "No solution found when resolving dependencies",
		}

		// when
		attempt, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrResync)
		assert.Equal(t, entities.DispositionAborted, attempt.Disposition)
		assert.Equal(t, f.lock, f.currentLock(t))
		assert.Equal(t, 1, f.resync.FrozenCalls)
		assert.Zero(t, f.tests.Calls)
		assert.Empty(t, f.git.Messages)
		assert.Equal(t, 1, f.snapshots.PruneCalls)
		require.Len(t, f.notifier.Notifications, 1)
		assert.Equal(t, "No solution found when resolving dependencies", f.notifier.Notifications[0].TestOutput)
	})

	t.Run("should abort when the rollback cannot restore the snapshot", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		f.resync.UpgradedLock = baseLock().WithPackage("django", "5.0.1").BuildLock()
		f.tests.Results = []entities.CommandResult{{ExitCode: 1}}
		f.snapshots.RestoreErr = fmt.Errorf("%w: snapshot vanished", entities.ErrBackup)

		// when
		attempt, err := f.execute(t)

		// then
		require.ErrorIs(t, err, entities.ErrBackup)
		assert.Equal(t, entities.DispositionAborted, attempt.Disposition)
		assert.Zero(t, f.resync.FrozenCalls)
		assert.Empty(t, f.git.Messages)
	})

	t.Run("should retry a rejected push", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		retries := 2
		f.settings.Git.PushRetries = &retries
		f.resync.UpgradedLock = baseLock().WithPackage("django", "4.2.27").BuildLock()
		failedPush := doubles.SuccessfulTransaction()
		failedPush.OK = false
		failedPush.Message = "git push failed"
		failedPush.Steps[3] = entities.GitStepResult{Step: entities.GitStepPush, Stderr: "rejected"}
		f.git.TransactionResult = failedPush
		f.git.PushResults = []entities.GitStepResult{
			{Step: entities.GitStepPush, Stderr: "rejected"},
			{Step: entities.GitStepPush, OK: true},
		}

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, f.git.PushCalls)
		require.NotNil(t, attempt.Git)
		assert.True(t, attempt.Git.OK)
		assert.Contains(t, attempt.Git.Message, "after 2 retries")
	})

	t.Run("should report a push that never succeeds without rolling back", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		retries := 1
		f.settings.Git.PushRetries = &retries
		upgraded := baseLock().WithPackage("django", "4.2.27").BuildLock()
		f.resync.UpgradedLock = upgraded
		failedPush := doubles.SuccessfulTransaction()
		failedPush.OK = false
		failedPush.Steps[3] = entities.GitStepResult{Step: entities.GitStepPush}
		f.git.TransactionResult = failedPush
		f.git.PushResults = []entities.GitStepResult{{Step: entities.GitStepPush, Stderr: "rejected"}}

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.DispositionApplied, attempt.Disposition)
		assert.False(t, attempt.Git.OK)
		assert.Equal(t, 1, f.git.PushCalls)
		assert.Equal(t, "git push failed after 1 retry", attempt.Git.Message)
		assert.Equal(t, upgraded, f.currentLock(t))
		assert.Zero(t, f.resync.FrozenCalls)
	})

	t.Run("should push no more times than the configured retries", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		retries := 2
		f.settings.Git.PushRetries = &retries
		f.resync.UpgradedLock = baseLock().WithPackage("django", "4.2.27").BuildLock()
		failedPush := doubles.SuccessfulTransaction()
		failedPush.OK = false
		failedPush.Steps[3] = entities.GitStepResult{Step: entities.GitStepPush}
		f.git.TransactionResult = failedPush
		f.git.PushResults = []entities.GitStepResult{{Step: entities.GitStepPush, Stderr: "rejected"}}

		// when
		attempt, err := f.execute(t)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, f.git.PushCalls)
		assert.Equal(t, "git push failed after 2 retries", attempt.Git.Message)
	})

	t.Run("should not start when the context is already cancelled", func(t *testing.T) {
		t.Parallel()

		// given
		f := newUpdateFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		_, err := f.command().Execute(ctx, f.settings, commands.UpdateOptions{ProjectDir: f.dir, Hostname: "dweb01"})

		// then
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, f.resync.UpgradeCalls)
	})
}

func TestCommitMessage(t *testing.T) {
	t.Parallel()

	t.Run("should list every changed package", func(t *testing.T) {
		t.Parallel()

		// given
		changes := []entities.VersionChange{
			{Package: "asgiref", OldVersion: "3.8.1", NewVersion: "3.9.0", Changed: true},
			{Package: "django", OldVersion: "4.2.20", NewVersion: "4.2.27", Changed: true},
		}

		// when
		message := commands.CommitMessage(changes)

		// then
		assert.Equal(t,
			"auto-updater: updated dependencies\n\n- asgiref 3.8.1 -> 3.9.0\n- django 4.2.20 -> 4.2.27",
			message)
	})

	t.Run("should describe a hash-only refresh", func(t *testing.T) {
		t.Parallel()

		// when
		message := commands.CommitMessage(nil)

		// then
		assert.Equal(t, "auto-updater: refreshed lock file", message)
	})
}
