package precondition

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

const maxListedChanges = 10

// GoGitPreconditionRepository validates the project directory and its git
// working tree without shelling out to git, so ownership quirks of the git
// binary ("dubious ownership") do not interfere.
type GoGitPreconditionRepository struct{}

// NewGoGitPreconditionRepository creates a new GoGitPreconditionRepository.
func NewGoGitPreconditionRepository() *GoGitPreconditionRepository {
	return &GoGitPreconditionRepository{}
}

// Check returns the first unmet precondition, wrapped in entities.ErrPrecondition.
func (it *GoGitPreconditionRepository) Check(project *entities.Project) error {
	info, err := os.Stat(project.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: project directory %s does not exist", entities.ErrPrecondition, project.Dir)
	}
	if _, statErr := os.Stat(project.LockPath); statErr != nil {
		return fmt.Errorf("%w: lock file %s not found", entities.ErrPrecondition, project.LockPath)
	}
	if _, lookErr := exec.LookPath(project.ToolPath); lookErr != nil {
		return fmt.Errorf("%w: resync tool %q not found: %w", entities.ErrPrecondition, project.ToolPath, lookErr)
	}
	if gitErr := checkWorkingTree(project); gitErr != nil {
		return gitErr
	}

	logger.Infof("Preconditions met for %s (branch %s, tier %s)", project.Name, project.Branch, project.Tier)
	return nil
}

func checkWorkingTree(project *entities.Project) error {
	repo, err := git.PlainOpen(project.Dir)
	if err != nil {
		return fmt.Errorf("%w: %s is not a git repository: %w", entities.ErrPrecondition, project.Dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("%w: cannot read HEAD: %w", entities.ErrPrecondition, err)
	}
	branch := "detached"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	if branch != project.Branch {
		return fmt.Errorf("%w: project is on branch %q instead of %q", entities.ErrPrecondition, branch, project.Branch)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: cannot open worktree: %w", entities.ErrPrecondition, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("%w: git status failed: %w", entities.ErrPrecondition, err)
	}
	if !status.IsClean() {
		return fmt.Errorf("%w: working tree has uncommitted changes: %s",
			entities.ErrPrecondition, summarizeStatus(status))
	}
	return nil
}

func summarizeStatus(status git.Status) string {
	files := make([]string, 0, len(status))
	for file, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		files = append(files, file)
	}
	sort.Strings(files)
	if len(files) > maxListedChanges {
		files = append(files[:maxListedChanges], fmt.Sprintf("and %d more", len(files)-maxListedChanges))
	}
	return strings.Join(files, ", ")
}
