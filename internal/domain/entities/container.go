package entities

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
// Settings requires a config file path, so it is loaded by the controllers layer.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewLockDiffComparator); err != nil {
		return err
	}
	return nil
}
