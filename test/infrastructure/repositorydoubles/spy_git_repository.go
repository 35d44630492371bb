//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyGitRepository implements repositories.GitRepository as a configurable spy.
type SpyGitRepository struct {
	// --- RunTransaction ---
	TransactionResult entities.GitTransactionResult
	Messages          []string

	// --- Push ---
	// PushResults are returned in order; once exhausted, the last one repeats.
	PushResults []entities.GitStepResult
	PushCalls   int
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

func (s *SpyGitRepository) RunTransaction(
	_ context.Context,
	_ *entities.Project,
	message string,
) entities.GitTransactionResult {
	s.Messages = append(s.Messages, message)
	return s.TransactionResult
}

func (s *SpyGitRepository) Push(_ context.Context, _ *entities.Project) entities.GitStepResult {
	s.PushCalls++
	if len(s.PushResults) == 0 {
		return entities.GitStepResult{Step: entities.GitStepPush, OK: true}
	}
	idx := s.PushCalls - 1
	if idx >= len(s.PushResults) {
		idx = len(s.PushResults) - 1
	}
	return s.PushResults[idx]
}

// SuccessfulTransaction returns a result in which every step succeeded.
func SuccessfulTransaction() entities.GitTransactionResult {
	return entities.GitTransactionResult{
		OK:      true,
		Message: "lock file committed and pushed",
		Steps: []entities.GitStepResult{
			{Step: entities.GitStepPull, OK: true},
			{Step: entities.GitStepAdd, OK: true},
			{Step: entities.GitStepCommit, OK: true},
			{Step: entities.GitStepPush, OK: true},
		},
	}
}
