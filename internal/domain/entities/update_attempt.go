package entities

// Phase is a state of the update state machine.
type Phase string

const (
	PhaseStart        Phase = "start"
	PhasePrecondition Phase = "precondition"
	PhaseSnapshot     Phase = "snapshot"
	PhaseResync       Phase = "resync"
	PhaseDiff         Phase = "diff"
	PhaseNoChangeDone Phase = "no_change_done"
	PhaseTest         Phase = "test"
	PhaseCommit       Phase = "commit"
	PhaseRollback     Phase = "rollback"
	PhaseCleanup      Phase = "cleanup"
	PhaseEnd          Phase = "end"
	PhaseAborted      Phase = "aborted"
)

// Disposition is the final outcome of a run.
type Disposition string

const (
	DispositionApplied    Disposition = "applied"
	DispositionRolledBack Disposition = "rolled_back"
	DispositionNoChange   Disposition = "no_change"
	DispositionAborted    Disposition = "aborted"
)

// AssetRebuildResult is the outcome of one rebuild triggered by a package version change.
type AssetRebuildResult struct {
	Change VersionChange
	Result CommandResult
}

// UpdateAttempt is the orchestrator's working state for a single run. It is never persisted.
type UpdateAttempt struct {
	Phase        Phase
	PhaseHistory []Phase

	Snapshot      LockSnapshot
	Diff          DiffResult
	TestResult    *CommandResult
	ResyncResult  *CommandResult
	FrozenResync  *CommandResult
	RollbackTest  *CommandResult
	AssetRebuilds []AssetRebuildResult
	Git           *GitTransactionResult

	Disposition Disposition
	Failure     error
}

// Enter moves the attempt into the given phase, recording the transition.
func (it *UpdateAttempt) Enter(phase Phase) {
	it.Phase = phase
	it.PhaseHistory = append(it.PhaseHistory, phase)
}

// Visited reports whether the attempt ever entered the given phase.
func (it *UpdateAttempt) Visited(phase Phase) bool {
	for _, visited := range it.PhaseHistory {
		if visited == phase {
			return true
		}
	}
	return false
}

// RollbackVerified reports whether the rollback restored a frozen, passing environment.
func (it *UpdateAttempt) RollbackVerified() bool {
	return it.FrozenResync != nil && it.FrozenResync.OK() &&
		it.RollbackTest != nil && it.RollbackTest.OK()
}
