package commands

import (
	"context"
	"os"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// Snapshots is the interface for listing the retained lock snapshots of a project.
type Snapshots interface {
	Execute(ctx context.Context, settings *entities.Settings, opts SnapshotsOptions) (*SnapshotListing, error)
}

// SnapshotsOptions holds runtime options for the snapshots listing.
type SnapshotsOptions struct {
	ProjectDir string
}

// SnapshotListing is the retained snapshots, newest first, and the one the latest pointer names.
type SnapshotListing struct {
	BackupDir string
	Snapshots []entities.LockSnapshot
	LatestID  string
}

// SnapshotsCommand reads the snapshot store without touching the project.
type SnapshotsCommand struct {
	snapshots repositories.SnapshotRepository
}

// NewSnapshotsCommand creates a new SnapshotsCommand.
func NewSnapshotsCommand(snapshots repositories.SnapshotRepository) *SnapshotsCommand {
	return &SnapshotsCommand{snapshots: snapshots}
}

// Execute lists the snapshots kept for the project at opts.ProjectDir.
func (it *SnapshotsCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts SnapshotsOptions,
) (*SnapshotListing, error) {
	hostname, _ := os.Hostname()
	project, err := settings.ResolveProject(opts.ProjectDir, hostname, "")
	if err != nil {
		return nil, err
	}

	snapshots, err := it.snapshots.List(project.BackupDir)
	if err != nil {
		return nil, err
	}

	listing := &SnapshotListing{BackupDir: project.BackupDir, Snapshots: snapshots}
	if latest, latestErr := it.snapshots.Latest(project.BackupDir); latestErr == nil {
		listing.LatestID = latest.ID
	}
	return listing, nil
}
