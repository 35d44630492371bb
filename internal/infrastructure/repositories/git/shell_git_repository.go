package git

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

const nothingToCommit = "nothing to commit"

// conflictPattern matches the lines "git pull" prints for a merge conflict.
var conflictPattern = regexp.MustCompile(`(?m)^(CONFLICT \(|Automatic merge failed)`)

// ShellGitRepository runs the commit transaction through the git binary.
type ShellGitRepository struct {
	runner shell.Runner
}

// NewShellGitRepository creates a new ShellGitRepository.
func NewShellGitRepository(runner shell.Runner) *ShellGitRepository {
	return &ShellGitRepository{runner: runner}
}

// RunTransaction pulls, stages the lock file, commits and pushes. It stops at
// the first failing step so nothing partially staged is ever pushed.
// It never resolves conflicts and never force-pushes.
func (it *ShellGitRepository) RunTransaction(
	ctx context.Context,
	project *entities.Project,
	message string,
) entities.GitTransactionResult {
	result := entities.GitTransactionResult{}

	steps := []func() entities.GitStepResult{
		func() entities.GitStepResult { return it.pull(ctx, project) },
		func() entities.GitStepResult { return it.add(ctx, project) },
		func() entities.GitStepResult { return it.commit(ctx, project, message) },
		func() entities.GitStepResult { return it.Push(ctx, project) },
	}

	for _, run := range steps {
		step := run()
		result.Steps = append(result.Steps, step)
		if !step.OK {
			result.Message = fmt.Sprintf("git %s failed", step.Step)
			logger.Warnf("[git] %s failed: %s", step.Step, strings.TrimSpace(step.Stderr+"\n"+step.Stdout))
			return result
		}
	}

	result.OK = true
	result.Message = "lock file committed and pushed"
	if commitStep := result.Steps[2]; commitStep.NoOp {
		result.Message = "nothing to commit; working tree already matches"
	}
	logger.Infof("[git] %s", result.Message)
	return result
}

// Push runs "git push <remote> <branch>".
func (it *ShellGitRepository) Push(ctx context.Context, project *entities.Project) entities.GitStepResult {
	res := it.git(ctx, project, "push", project.Remote, project.Branch)
	return toStep(entities.GitStepPush, res, res.OK())
}

func (it *ShellGitRepository) pull(ctx context.Context, project *entities.Project) entities.GitStepResult {
	res := it.git(ctx, project, "pull", project.Remote, project.Branch)
	return toStep(entities.GitStepPull, res, res.OK() && !hasConflict(res))
}

func (it *ShellGitRepository) add(ctx context.Context, project *entities.Project) entities.GitStepResult {
	res := it.git(ctx, project, "add", relativeTo(project.Dir, project.LockPath))
	return toStep(entities.GitStepAdd, res, res.OK())
}

func (it *ShellGitRepository) commit(
	ctx context.Context,
	project *entities.Project,
	message string,
) entities.GitStepResult {
	res := it.git(ctx, project, "commit", "-m", message)
	if strings.Contains(res.Stdout, nothingToCommit) || strings.Contains(res.Stderr, nothingToCommit) {
		step := toStep(entities.GitStepCommit, res, true)
		step.NoOp = true
		return step
	}
	return toStep(entities.GitStepCommit, res, res.OK())
}

func (it *ShellGitRepository) git(ctx context.Context, project *entities.Project, args ...string) entities.CommandResult {
	return it.runner.Run(ctx, shell.Request{
		Dir:     project.Dir,
		Args:    append([]string{"git"}, args...),
		Timeout: project.Timeouts.Git,
	})
}

func toStep(step entities.GitStep, res entities.CommandResult, ok bool) entities.GitStepResult {
	stderr := res.Stderr
	if res.Err != nil {
		stderr = strings.TrimSpace(stderr + "\n" + res.Err.Error())
	}
	return entities.GitStepResult{
		Step:   step,
		OK:     ok,
		Stdout: res.Stdout,
		Stderr: stderr,
	}
}

func hasConflict(res entities.CommandResult) bool {
	return conflictPattern.MatchString(res.Stdout + "\n" + res.Stderr)
}

// relativeTo returns path relative to dir when possible, so git stages the right file.
func relativeTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
