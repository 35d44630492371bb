//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyAssetRebuildRepository records every triggered rebuild.
type SpyAssetRebuildRepository struct {
	Result   entities.CommandResult
	Triggers []entities.AssetTrigger
}

var _ repositories.AssetRebuildRepository = (*SpyAssetRebuildRepository)(nil)

func (s *SpyAssetRebuildRepository) Rebuild(
	_ context.Context,
	_ *entities.Project,
	trigger entities.AssetTrigger,
) entities.CommandResult {
	s.Triggers = append(s.Triggers, trigger)
	result := s.Result
	result.Args = trigger.Command
	return result
}
