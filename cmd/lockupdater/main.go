package main

import (
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockupdater/internal"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/controllers"
)

const logFileMode = 0o644

func buildRootCommand(updateController *controllers.UpdateController) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "lockupdater [project-dir]",
		Short: "Transactional uv.lock auto-updater",
		Long: `Keeps a uv-managed project's lock file up to date without breaking it.

Each run snapshots uv.lock, upgrades it for the host's tier, and runs the
project's tests. Passing upgrades are committed and pushed; failing ones are
rolled back to the snapshot. Administrators are notified either way.

Usage modes:
  lockupdater /path/to/project            Run one update cycle (for cron)
  lockupdater snapshots /path/to/project  List retained lock snapshots`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			return configureLogging(command)
		},
		RunE: func(command *cobra.Command, args []string) error {
			if len(args) == 0 {
				return command.Help()
			}
			updateController.Execute(command, args)
			return nil
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().String("tier", "",
		"Dependency group to resync: local, staging or production (default: from hostname)")
	cmd.PersistentFlags().String("log-file", "",
		"Also append log output to this file")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.MaximumNArgs(1),
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		rootCmd.AddCommand(subCmd)
	}
}

func configureLogging(cmd *cobra.Command) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile == "" {
		return nil
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return err
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, file))
	return nil
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	container := newContainer()
	cobraRoot := buildRootCommand(injectUpdateController(container))

	// Add all subcommands
	addSubcommands(cobraRoot, injectAppContext(container))

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'lockupdater': %s", err)
	}
}
