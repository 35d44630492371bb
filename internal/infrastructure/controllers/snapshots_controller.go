package controllers

import (
	"context"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// SnapshotsController handles the "snapshots" subcommand.
type SnapshotsController struct {
	command commands.Snapshots
	out     io.Writer
	exit    func(code int)
}

// NewSnapshotsController creates a new SnapshotsController.
func NewSnapshotsController(command commands.Snapshots) *SnapshotsController {
	return &SnapshotsController{command: command, out: os.Stdout, exit: os.Exit}
}

// GetBind returns the Cobra command metadata for the snapshots controller.
func (it *SnapshotsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "snapshots [project-dir]",
		Short: "List the lock snapshots retained for a project",
		Long: `List the retained uv.lock snapshots of a project, newest first.
The snapshot the "latest" pointer names is marked with an asterisk.`,
	}
}

// Execute prints the snapshot listing.
func (it *SnapshotsController) Execute(cmd *cobra.Command, args []string) {
	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		it.exit(1)
		return
	}

	listing, err := it.command.Execute(context.Background(), settings, commands.SnapshotsOptions{
		ProjectDir: projectDir,
	})
	if err != nil {
		logger.Errorf("Failed to list snapshots: %v", err)
		it.exit(1)
		return
	}

	if len(listing.Snapshots) == 0 {
		_, _ = fmt.Fprintf(it.out, "No snapshots in %s\n", listing.BackupDir)
		return
	}
	for _, snapshot := range listing.Snapshots {
		marker := " "
		if snapshot.ID == listing.LatestID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(it.out, "%s %s  %s\n", marker, snapshot.ID, snapshot.Path)
	}
}
