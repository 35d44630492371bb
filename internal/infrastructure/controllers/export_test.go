package controllers

import (
	"io"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
)

// NewUpdateControllerForTest builds an UpdateController that reports exit codes to exit.
func NewUpdateControllerForTest(command commands.Update, exit func(code int)) *UpdateController {
	return &UpdateController{command: command, exit: exit}
}

// NewSnapshotsControllerForTest builds a SnapshotsController printing to out
// and reporting exit codes to exit.
func NewSnapshotsControllerForTest(
	command commands.Snapshots,
	out io.Writer,
	exit func(code int),
) *SnapshotsController {
	return &SnapshotsController{command: command, out: out, exit: exit}
}
