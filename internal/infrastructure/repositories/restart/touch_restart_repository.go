package restart

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

const (
	dirMode  = 0o775
	fileMode = 0o664
)

// TouchRestartRepository signals a restart by touching the project's restart file,
// the convention Passenger-style application servers watch for.
type TouchRestartRepository struct {
	now func() time.Time
}

// NewTouchRestartRepository creates a new TouchRestartRepository.
func NewTouchRestartRepository() *TouchRestartRepository {
	return &TouchRestartRepository{now: time.Now}
}

// SignalRestart creates the restart file if needed and bumps its modification time.
func (it *TouchRestartRepository) SignalRestart(project *entities.Project) error {
	if project.RestartFile == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(project.RestartFile), dirMode); err != nil {
		return fmt.Errorf("failed to create restart directory: %w", err)
	}
	file, err := os.OpenFile(project.RestartFile, os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("failed to create restart file: %w", err)
	}
	if closeErr := file.Close(); closeErr != nil {
		return fmt.Errorf("failed to close restart file: %w", closeErr)
	}

	now := it.now()
	if chErr := os.Chtimes(project.RestartFile, now, now); chErr != nil {
		return fmt.Errorf("failed to touch restart file: %w", chErr)
	}
	logger.Infof("Touched %s", project.RestartFile)
	return nil
}
