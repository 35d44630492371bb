package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

// UpdateController handles the root command with a path argument and the "update" subcommand.
type UpdateController struct {
	command commands.Update
	exit    func(code int)
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update) *UpdateController {
	return &UpdateController{command: command, exit: os.Exit}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update [project-dir]",
		Short: "Upgrade the lock file of a project, keeping it only if tests pass",
		Long: `Snapshot the project's uv.lock, run "uv sync --upgrade" for the host's tier,
and test the result. Passing changes are committed and pushed; failing ones
are rolled back to the snapshot and reapplied with "uv sync --frozen".

Exits non-zero only when the project fails its preconditions or the run aborts.`,
	}
}

// Execute runs one update cycle for the project directory.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	tier, _ := cmd.Flags().GetString("tier")
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

	attempt, runErr := it.command.Execute(ctx, settings, commands.UpdateOptions{
		ProjectDir: projectDir,
		Tier:       tier,
	})
	if runErr != nil {
		logger.Errorf("Update failed: %v", runErr)
		it.exit(1)
		return
	}

	logger.Infof("Update finished: %s", attempt.Disposition)
	if attempt.Failure != nil {
		logger.Warnf("Update finished with a warning: %v", attempt.Failure)
	}
}
