package entities

import (
	"strconv"
	"strings"
)

// CommandResult is the outcome of one external process invocation.
// A command that could not be started carries its error in Err and ExitCode -1.
type CommandResult struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

// OK reports whether the process ran to completion with exit status zero.
func (it CommandResult) OK() bool {
	return it.Err == nil && !it.TimedOut && it.ExitCode == 0
}

// Output returns stdout followed by stderr, trimmed.
func (it CommandResult) Output() string {
	parts := make([]string, 0, 2) //nolint:mnd // stdout and stderr
	if out := strings.TrimSpace(it.Stdout); out != "" {
		parts = append(parts, out)
	}
	if errOut := strings.TrimSpace(it.Stderr); errOut != "" {
		parts = append(parts, errOut)
	}
	return strings.Join(parts, "\n")
}

// CommandLine renders the invoked arguments as a single line.
func (it CommandResult) CommandLine() string {
	return strings.Join(it.Args, " ")
}

// Summary describes the outcome in one line, suitable for logs and notifications.
func (it CommandResult) Summary() string {
	switch {
	case it.TimedOut:
		return "timed out"
	case it.Err != nil && it.ExitCode < 0:
		return "failed to start: " + it.Err.Error()
	case it.OK():
		return "succeeded"
	default:
		return "failed with exit code " + strconv.Itoa(it.ExitCode)
	}
}
