//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyResyncRepository implements repositories.ResyncRepository as a configurable spy.
// When UpgradedLock is set, Upgrade writes it over the project's lock file.
type SpyResyncRepository struct {
	// --- Upgrade ---
	UpgradedLock  string
	UpgradeResult entities.CommandResult
	UpgradeCalls  int

	// --- Frozen ---
	FrozenResult entities.CommandResult
	FrozenCalls  int
	// spy: lock content at the time Frozen ran
	FrozenLocks []string
}

var _ repositories.ResyncRepository = (*SpyResyncRepository)(nil)

func (s *SpyResyncRepository) Upgrade(_ context.Context, project *entities.Project) entities.CommandResult {
	s.UpgradeCalls++
	if s.UpgradedLock != "" {
		_ = os.WriteFile(project.LockPath, []byte(s.UpgradedLock), 0o600)
	}
	return s.UpgradeResult
}

func (s *SpyResyncRepository) Frozen(_ context.Context, project *entities.Project) entities.CommandResult {
	s.FrozenCalls++
	content, _ := os.ReadFile(project.LockPath)
	s.FrozenLocks = append(s.FrozenLocks, string(content))
	return s.FrozenResult
}
