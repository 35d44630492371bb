package entities

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultDiffContext = 3
	fromFilePrefix     = "--- "
	toFilePrefix       = "+++ "
	hunkPrefix         = "@@"
)

// DiffResult is the outcome of comparing two lock snapshots.
// When Changed is false, UnifiedText is empty and both counters are zero.
type DiffResult struct {
	Changed     bool
	UnifiedText string
	Added       int
	Removed     int
}

// LockDiffComparator produces unified diffs between lock file contents.
type LockDiffComparator struct {
	FromLabel string
	ToLabel   string
	Context   int
}

// NewLockDiffComparator creates a comparator labelling both sides after the lock file name.
func NewLockDiffComparator() *LockDiffComparator {
	return &LockDiffComparator{
		FromLabel: "previous/uv.lock",
		ToLabel:   "current/uv.lock",
		Context:   defaultDiffContext,
	}
}

// WithLabels returns a copy of the comparator using the given file labels.
func (it *LockDiffComparator) WithLabels(from, to string) *LockDiffComparator {
	return &LockDiffComparator{FromLabel: from, ToLabel: to, Context: it.Context}
}

// Compare diffs previous against current line by line.
// Lines are compared byte for byte, so any textual difference is reported.
// An internal failure is logged and reported as "no change".
func (it *LockDiffComparator) Compare(previous, current string) DiffResult {
	if previous == current {
		return DiffResult{}
	}

	//nolint:exhaustruct // dates are not rendered
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: it.FromLabel,
		ToFile:   it.ToLabel,
		Context:  it.Context,
	})
	if err != nil {
		logger.Errorf("Failed to compute lock diff: %v", err)
		return DiffResult{}
	}
	if text == "" {
		return DiffResult{}
	}

	added, removed := countChangedLines(text)
	return DiffResult{
		Changed:     true,
		UnifiedText: text,
		Added:       added,
		Removed:     removed,
	}
}

// countChangedLines counts added and removed lines in a unified diff,
// skipping the file header pair and hunk headers.
func countChangedLines(text string) (int, int) {
	added, removed := 0, 0
	inHeader := true
	for _, line := range strings.Split(text, "\n") {
		if inHeader {
			if strings.HasPrefix(line, fromFilePrefix) || strings.HasPrefix(line, toFilePrefix) {
				continue
			}
			inHeader = false
		}
		switch {
		case strings.HasPrefix(line, hunkPrefix):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
