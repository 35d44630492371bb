package entities

import "strings"

// GitStep names one subcommand of the commit transaction.
type GitStep string

const (
	GitStepPull   GitStep = "pull"
	GitStepAdd    GitStep = "add"
	GitStepCommit GitStep = "commit"
	GitStepPush   GitStep = "push"
)

// GitStepResult is the captured outcome of one git subcommand.
// NoOp marks a commit that found nothing to commit.
type GitStepResult struct {
	Step   GitStep
	OK     bool
	NoOp   bool
	Stdout string
	Stderr string
}

// GitTransactionResult is the ordered outcome of the pull, add, commit and push sequence.
type GitTransactionResult struct {
	Steps   []GitStepResult
	OK      bool
	Message string
}

// FailedStep returns the step that stopped the transaction, if any.
func (it GitTransactionResult) FailedStep() (GitStepResult, bool) {
	for _, step := range it.Steps {
		if !step.OK {
			return step, true
		}
	}
	return GitStepResult{}, false
}

// FailedAtPush reports whether every step before push succeeded and push did not.
func (it GitTransactionResult) FailedAtPush() bool {
	failed, ok := it.FailedStep()
	return ok && failed.Step == GitStepPush
}

// Report renders every step with its captured output.
func (it GitTransactionResult) Report() string {
	var sb strings.Builder
	sb.WriteString(it.Message)
	for _, step := range it.Steps {
		sb.WriteString("\n\ngit ")
		sb.WriteString(string(step.Step))
		switch {
		case step.NoOp:
			sb.WriteString(": nothing to do")
		case step.OK:
			sb.WriteString(": ok")
		default:
			sb.WriteString(": FAILED")
		}
		if out := strings.TrimSpace(step.Stdout); out != "" {
			sb.WriteString("\nstdout:\n")
			sb.WriteString(out)
		}
		if errOut := strings.TrimSpace(step.Stderr); errOut != "" {
			sb.WriteString("\nstderr:\n")
			sb.WriteString(errOut)
		}
	}
	return sb.String()
}
