package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cenkalti/backoff/v4"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/lockupdater/internal/infrastructure/repositories"
)

const (
	commitSubject      = "auto-updater: updated dependencies"
	commitSubjectLocks = "auto-updater: refreshed lock file"
	maxAuditProblems   = 20
)

// Update is the interface for the update command (one full update cycle for one project).
type Update interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpdateOptions) (*entities.UpdateAttempt, error)
}

// UpdateOptions holds runtime options for a single update run.
type UpdateOptions struct {
	ProjectDir string
	Tier       string
	Hostname   string
}

// RunContext carries everything one run needs, so nothing is read from process-wide state.
type RunContext struct {
	Project    *entities.Project
	Log        logger.FieldLogger
	Notifier   repositories.NotifierRepository
	Recipients []entities.AdminContact
}

// UpdateCommand runs the snapshot, resync, diff, test, commit-or-rollback and cleanup cycle.
type UpdateCommand struct {
	snapshots     repositories.SnapshotRepository
	resync        repositories.ResyncRepository
	tests         repositories.TestRunnerRepository
	rebuilds      repositories.AssetRebuildRepository
	restart       repositories.RestartRepository
	git           repositories.GitRepository
	permissions   repositories.PermissionsRepository
	preconditions repositories.PreconditionRepository
	contacts      repositories.ContactsRepository
	notifiers     *infraRepos.NotifierRegistry
	comparator    *entities.LockDiffComparator
}

// NewUpdateCommand creates a new UpdateCommand.
func NewUpdateCommand(
	snapshots repositories.SnapshotRepository,
	resync repositories.ResyncRepository,
	tests repositories.TestRunnerRepository,
	rebuilds repositories.AssetRebuildRepository,
	restart repositories.RestartRepository,
	git repositories.GitRepository,
	permissions repositories.PermissionsRepository,
	preconditions repositories.PreconditionRepository,
	contacts repositories.ContactsRepository,
	notifiers *infraRepos.NotifierRegistry,
	comparator *entities.LockDiffComparator,
) *UpdateCommand {
	return &UpdateCommand{
		snapshots:     snapshots,
		resync:        resync,
		tests:         tests,
		rebuilds:      rebuilds,
		restart:       restart,
		git:           git,
		permissions:   permissions,
		preconditions: preconditions,
		contacts:      contacts,
		notifiers:     notifiers,
		comparator:    comparator,
	}
}

// Execute resolves the project, validates it and runs one update cycle.
// The returned error is non-nil only when the run did not complete: a failed
// precondition or an aborted cycle. Rollbacks are completed runs.
func (it *UpdateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts UpdateOptions,
) (*entities.UpdateAttempt, error) {
	hostname := opts.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	project, err := settings.ResolveProject(opts.ProjectDir, hostname, opts.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrPrecondition, err)
	}

	notifier, err := it.notifiers.ForSettings(settings.Email)
	if err != nil {
		return nil, err
	}

	run := &RunContext{
		Project:    project,
		Log:        logger.WithFields(logger.Fields{"project": project.Name, "tier": project.Tier}),
		Notifier:   notifier,
		Recipients: settings.SysAdmins,
	}

	attempt := &entities.UpdateAttempt{}
	attempt.Enter(entities.PhaseStart)

	if prepErr := it.prepare(ctx, run, attempt); prepErr != nil {
		attempt.Enter(entities.PhaseAborted)
		attempt.Disposition = entities.DispositionAborted
		attempt.Failure = prepErr
		run.Log.Errorf("Update halted: %v", prepErr)
		it.notify(ctx, run, entities.Notification{
			Kind:  entities.NotificationPrecondition,
			Cause: prepErr.Error(),
		})
		return attempt, prepErr
	}

	// the cycle is not cancellable once the lock has been snapshotted
	it.Run(context.WithoutCancel(ctx), run, attempt)
	if attempt.Disposition == entities.DispositionAborted {
		return attempt, attempt.Failure
	}
	return attempt, nil
}

// prepare resolves recipients and checks every precondition, including the pre-flight test run.
func (it *UpdateCommand) prepare(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) error {
	attempt.Enter(entities.PhasePrecondition)
	project := run.Project

	admins, err := it.contacts.ProjectAdmins(project)
	if err != nil {
		return err
	}
	run.Recipients = admins

	if checkErr := it.preconditions.Check(project); checkErr != nil {
		return checkErr
	}

	if project.Group == "" {
		group, groupErr := it.permissions.DetectGroup(project.Dir)
		if groupErr != nil {
			return fmt.Errorf("%w: cannot infer group: %w", entities.ErrPrecondition, groupErr)
		}
		project.Group = group
		run.Log.Infof("Inferred group %q", group)
	}

	if problems := it.permissions.Audit(project.Group, project.ManagedPaths()); len(problems) > 0 {
		if len(problems) > maxAuditProblems {
			problems = append(problems[:maxAuditProblems], fmt.Sprintf("and %d more", len(problems)-maxAuditProblems))
		}
		return fmt.Errorf("%w: group/permissions check failed:\n%s",
			entities.ErrPrecondition, strings.Join(problems, "\n"))
	}

	if project.PreflightTests {
		result := it.tests.Run(ctx, project)
		if !result.OK() {
			return fmt.Errorf("%w: tests fail before updating (%s):\n%s",
				entities.ErrPrecondition, result.Summary(), result.Output())
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("cancelled before snapshot: %w", ctxErr)
	}
	return nil
}

// Run drives the state machine from SNAPSHOT to END on an already validated project.
func (it *UpdateCommand) Run(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) {
	project := run.Project

	attempt.Enter(entities.PhaseSnapshot)
	snapshot, err := it.snapshots.Backup(project.LockPath, project.BackupDir)
	if err != nil {
		it.abort(ctx, run, attempt, err)
		return
	}
	attempt.Snapshot = snapshot
	run.Log.Infof("Snapshot %s taken", snapshot.ID)

	attempt.Enter(entities.PhaseResync)
	resync := it.resync.Upgrade(ctx, project)
	attempt.ResyncResult = &resync
	if !resync.OK() {
		it.recoverFailedResync(ctx, run, attempt)
		it.cleanup(ctx, run, attempt)
		it.abort(ctx, run, attempt, fmt.Errorf("%w: %s %s", entities.ErrResync, resync.CommandLine(), resync.Summary()))
		return
	}

	attempt.Enter(entities.PhaseDiff)
	current, err := os.ReadFile(project.LockPath)
	if err != nil {
		it.recoverFailedResync(ctx, run, attempt)
		it.cleanup(ctx, run, attempt)
		it.abort(ctx, run, attempt, fmt.Errorf("%w: lock file unreadable after resync: %w", entities.ErrResync, err))
		return
	}
	attempt.Diff = it.comparator.Compare(string(snapshot.Content), string(current))

	if !attempt.Diff.Changed {
		attempt.Enter(entities.PhaseNoChangeDone)
		attempt.Disposition = entities.DispositionNoChange
		run.Log.Info("Lock file unchanged, nothing to do")
		it.cleanup(ctx, run, attempt)
		attempt.Enter(entities.PhaseEnd)
		return
	}
	run.Log.Infof("Lock file changed (+%d/-%d lines)", attempt.Diff.Added, attempt.Diff.Removed)

	attempt.Enter(entities.PhaseTest)
	testResult := it.tests.Run(ctx, project)
	attempt.TestResult = &testResult

	if testResult.OK() {
		it.commit(ctx, run, attempt)
	} else if rollbackErr := it.rollback(ctx, run, attempt); rollbackErr != nil {
		it.abort(ctx, run, attempt, rollbackErr)
		return
	}

	it.cleanup(ctx, run, attempt)
	attempt.Enter(entities.PhaseEnd)
}

// commit applies the tested change: rebuilds triggered assets, signals a restart,
// commits the lock file and reports. A git failure is reported, never rolled back.
func (it *UpdateCommand) commit(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) {
	attempt.Enter(entities.PhaseCommit)
	project := run.Project

	for _, trigger := range project.AssetTriggers {
		change := entities.ExtractVersionChange(attempt.Diff, trigger.Package)
		if !change.Changed {
			continue
		}
		run.Log.Infof("%s changed (%s -> %s), rebuilding assets", trigger.Package, change.OldVersion, change.NewVersion)
		attempt.AssetRebuilds = append(attempt.AssetRebuilds, entities.AssetRebuildResult{
			Change: change,
			Result: it.rebuilds.Rebuild(ctx, project, trigger),
		})
	}

	if err := it.restart.SignalRestart(project); err != nil {
		run.Log.Warnf("Failed to signal restart: %v", err)
	}

	changes := entities.ScanVersionChanges(attempt.Diff)
	gitResult := it.git.RunTransaction(ctx, project, CommitMessage(changes))
	if gitResult.FailedAtPush() && project.PushRetries > 0 {
		gitResult = it.retryPush(ctx, run, gitResult)
	}
	attempt.Git = &gitResult
	if !gitResult.OK {
		run.Log.Warnf("Git transaction failed: %s", gitResult.Message)
	}

	attempt.Disposition = entities.DispositionApplied
	it.notify(ctx, run, entities.Notification{
		Kind:           entities.NotificationSuccess,
		DiffText:       attempt.Diff.UnifiedText,
		TestOutput:     attempt.TestResult.Output(),
		VersionChanges: changes,
		AssetRebuilds:  attempt.AssetRebuilds,
		Git:            &gitResult,
	})
}

// retryPush re-runs the push step with a constant delay between attempts.
func (it *UpdateCommand) retryPush(
	ctx context.Context,
	run *RunContext,
	result entities.GitTransactionResult,
) entities.GitTransactionResult {
	project := run.Project
	// the first push of Retry is itself a retry, so the policy allows one fewer
	policy := backoff.WithMaxRetries(
		backoff.WithContext(backoff.NewConstantBackOff(project.PushRetryDelay), ctx),
		uint64(project.PushRetries-1), //nolint:gosec // caller guarantees PushRetries > 0
	)

	attempts := 0
	var last entities.GitStepResult
	_ = backoff.Retry(func() error {
		attempts++
		run.Log.Infof("Retrying push (%d/%d)", attempts, project.PushRetries)
		last = it.git.Push(ctx, project)
		if !last.OK {
			return errors.New("push failed")
		}
		return nil
	}, policy)

	if attempts == 0 {
		return result
	}
	result.Steps[len(result.Steps)-1] = last
	if last.OK {
		result.OK = true
		result.Message = fmt.Sprintf("lock file committed and pushed after %d retr%s", attempts, plural(attempts))
	} else {
		result.Message = fmt.Sprintf("git push failed after %d retr%s", attempts, plural(attempts))
	}
	return result
}

// rollback restores the snapshot, reapplies it frozen and re-runs the tests.
// Only a failed restore is returned; a failed frozen resync is recorded as a
// verification failure without attempting a second rollback.
func (it *UpdateCommand) rollback(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) error {
	attempt.Enter(entities.PhaseRollback)
	project := run.Project
	run.Log.Warnf("Tests failed (%s), rolling back", attempt.TestResult.Summary())

	if err := it.snapshots.Restore(attempt.Snapshot, project.LockPath); err != nil {
		return err
	}

	frozen := it.resync.Frozen(ctx, project)
	attempt.FrozenResync = &frozen
	if !frozen.OK() {
		attempt.Failure = fmt.Errorf("%w: %s %s", entities.ErrVerification, frozen.CommandLine(), frozen.Summary())
		run.Log.Errorf("Frozen resync failed, environment may be inconsistent: %s", frozen.Output())
	}

	verify := it.tests.Run(ctx, project)
	attempt.RollbackTest = &verify
	if !verify.OK() {
		run.Log.Errorf("Tests still fail after rollback (%s)", verify.Summary())
	}

	if err := it.restart.SignalRestart(project); err != nil {
		run.Log.Warnf("Failed to signal restart: %v", err)
	}

	verification := &verify
	rollbackTestOutput := ""
	cause := "tests failed after resync: " + attempt.TestResult.Summary()
	if !frozen.OK() {
		verification = &frozen
		rollbackTestOutput = verify.Output()
		cause += "; frozen resync failed, environment may be inconsistent"
	}

	attempt.Disposition = entities.DispositionRolledBack
	it.notify(ctx, run, entities.Notification{
		Kind:               entities.NotificationRollback,
		DiffText:           attempt.Diff.UnifiedText,
		TestOutput:         attempt.TestResult.Output(),
		VersionChanges:     entities.ScanVersionChanges(attempt.Diff),
		Verification:       verification,
		Cause:              cause,
		RollbackTestOutput: rollbackTestOutput,
	})
	return nil
}

// recoverFailedResync puts the snapshot back and reapplies it so a failed
// upgrade does not leave a half-written lock or environment behind.
func (it *UpdateCommand) recoverFailedResync(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) {
	if err := it.snapshots.Restore(attempt.Snapshot, run.Project.LockPath); err != nil {
		run.Log.Errorf("Failed to restore snapshot after failed resync: %v", err)
		return
	}
	frozen := it.resync.Frozen(ctx, run.Project)
	attempt.FrozenResync = &frozen
	if !frozen.OK() {
		run.Log.Errorf("Frozen resync after failed upgrade %s", frozen.Summary())
	}
}

// cleanup prunes old snapshots and reconciles group permissions. Failures are only logged.
func (it *UpdateCommand) cleanup(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt) {
	attempt.Enter(entities.PhaseCleanup)
	project := run.Project

	if _, err := it.snapshots.Prune(project.BackupDir, project.KeepBackups); err != nil {
		run.Log.Warnf("Failed to prune snapshots: %v", err)
	}
	if err := it.permissions.Reconcile(ctx, project.Group, project.ManagedPaths()); err != nil {
		run.Log.Warnf("Failed to reconcile permissions: %v", err)
	}
}

// abort ends the run after a fatal error and reports it once.
func (it *UpdateCommand) abort(ctx context.Context, run *RunContext, attempt *entities.UpdateAttempt, cause error) {
	attempt.Enter(entities.PhaseAborted)
	attempt.Disposition = entities.DispositionAborted
	attempt.Failure = cause
	run.Log.Errorf("Update aborted: %v", cause)

	notification := entities.Notification{
		Kind:         entities.NotificationAborted,
		Cause:        cause.Error(),
		DiffText:     attempt.Diff.UnifiedText,
		Verification: attempt.FrozenResync,
	}
	if attempt.ResyncResult != nil && !attempt.ResyncResult.OK() {
		notification.TestOutput = attempt.ResyncResult.Output()
	} else if attempt.TestResult != nil {
		notification.TestOutput = attempt.TestResult.Output()
	}
	it.notify(ctx, run, notification)
}

func (it *UpdateCommand) notify(ctx context.Context, run *RunContext, notification entities.Notification) {
	notification.Project = run.Project.Name
	notification.Hostname = run.Project.Hostname
	notification.Tier = run.Project.Tier
	notification.Recipients = run.Recipients
	if err := run.Notifier.Notify(ctx, notification); err != nil {
		run.Log.Errorf("Failed to deliver %s notification: %v", notification.Kind, err)
	}
}

// CommitMessage builds the commit message listing every package whose version changed.
func CommitMessage(changes []entities.VersionChange) string {
	if len(changes) == 0 {
		return commitSubjectLocks
	}
	var sb strings.Builder
	sb.WriteString(commitSubject)
	sb.WriteString("\n")
	for _, change := range changes {
		sb.WriteString("\n- ")
		sb.WriteString(change.String())
	}
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
