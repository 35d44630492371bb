//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// StubSnapshotsCommand is a stub implementation of commands.Snapshots.
type StubSnapshotsCommand struct {
	ExecuteCallCount int
	Listing          *commands.SnapshotListing
	ExecuteErr       error
	LastOpts         commands.SnapshotsOptions
}

var _ commands.Snapshots = (*StubSnapshotsCommand)(nil)

func (s *StubSnapshotsCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	opts commands.SnapshotsOptions,
) (*commands.SnapshotListing, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Listing, s.ExecuteErr
}
