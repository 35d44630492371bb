package entities

import "time"

// SnapshotIDLayout is the time layout used for snapshot identifiers.
const SnapshotIDLayout = "2006-01-02T15-04-05"

// LockSnapshot is an immutable backup of the lock file taken before a resync.
type LockSnapshot struct {
	ID        string
	Path      string
	Content   []byte
	CreatedAt time.Time
}

// IsZero reports whether the snapshot was never taken.
func (it LockSnapshot) IsZero() bool {
	return it.Path == ""
}
