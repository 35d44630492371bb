package entities

import "errors"

var (
	// ErrPrecondition is returned when the managed project is not in a state that allows an update.
	ErrPrecondition = errors.New("precondition failed")

	// ErrBackup is returned when a lock snapshot cannot be written or restored.
	ErrBackup = errors.New("lock snapshot failed")

	// ErrResync is returned when the upgrading resync exits unsuccessfully.
	ErrResync = errors.New("lock resync failed")

	// ErrVerification marks a rollback whose frozen resync did not succeed,
	// meaning the dependency environment may be inconsistent.
	ErrVerification = errors.New("rollback verification failed")
)
