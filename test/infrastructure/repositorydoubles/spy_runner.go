//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories/shell"
)

// SpyRunner implements shell.Runner with results scripted by command line prefix.
// Unscripted commands succeed with empty output.
type SpyRunner struct {
	Results  map[string]entities.CommandResult
	Requests []shell.Request
}

var _ shell.Runner = (*SpyRunner)(nil)

// NewSpyRunner creates an empty SpyRunner.
func NewSpyRunner() *SpyRunner {
	return &SpyRunner{Results: make(map[string]entities.CommandResult)}
}

// On scripts the result for every command line starting with prefix.
func (s *SpyRunner) On(prefix string, result entities.CommandResult) *SpyRunner {
	s.Results[prefix] = result
	return s
}

func (s *SpyRunner) Run(_ context.Context, req shell.Request) entities.CommandResult {
	s.Requests = append(s.Requests, req)
	line := strings.Join(req.Args, " ")

	best := ""
	for prefix := range s.Results {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	result := entities.CommandResult{}
	if best != "" {
		result = s.Results[best]
	}
	result.Args = req.Args
	return result
}

// CommandLines returns every executed command line in order.
func (s *SpyRunner) CommandLines() []string {
	lines := make([]string, 0, len(s.Requests))
	for _, req := range s.Requests {
		lines = append(lines, strings.Join(req.Args, " "))
	}
	return lines
}
