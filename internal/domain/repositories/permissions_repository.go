package repositories

import (
	"context"
)

// PermissionsRepository manages group ownership of the managed directories.
type PermissionsRepository interface {
	// DetectGroup returns the most common group owning the entries of dir.
	DetectGroup(dir string) (string, error)

	// Audit lists every entry under paths that is not group-writable or not owned by group.
	Audit(group string, paths []string) []string

	// Reconcile gives group read/write access on every path, recursively.
	Reconcile(ctx context.Context, group string, paths []string) error
}
