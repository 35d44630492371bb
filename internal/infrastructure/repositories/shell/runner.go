package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// Request describes one external command invocation.
type Request struct {
	Dir     string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Runner executes external commands and captures their output.
// Failures to run are reported inside the result, never as a Go error.
type Runner interface {
	Run(ctx context.Context, req Request) entities.CommandResult
}

// ExecRunner is the default Runner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the request, bounded by its timeout when one is set.
func (it *ExecRunner) Run(ctx context.Context, req Request) entities.CommandResult {
	result := entities.CommandResult{Args: req.Args}
	if len(req.Args) == 0 {
		result.ExitCode = -1
		result.Err = errors.New("empty command")
		return result
	}

	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, req.Args[0], req.Args[1:]...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("Running %q in %s", result.CommandLine(), req.Dir)
	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		result.Err = fmt.Errorf("%q timed out after %s", result.CommandLine(), req.Timeout)
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		result.Err = fmt.Errorf("failed to run %q: %w", result.CommandLine(), err)
	}
	return result
}
