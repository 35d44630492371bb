package internal

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/lockupdater/internal/domain/commands"
	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/controllers"
	"github.com/rios0rios0/lockupdater/internal/infrastructure/repositories"
)

type layer struct {
	name     string
	register func(container *dig.Container) error
}

// RegisterProviders registers every layer with the DIG container, bottom-up:
// infrastructure repositories, domain entities, domain commands, then controllers.
func RegisterProviders(container *dig.Container) error {
	layers := []layer{
		{name: "repository", register: repositories.RegisterProviders},
		{name: "entity", register: entities.RegisterProviders},
		{name: "command", register: commands.RegisterProviders},
		{name: "controller", register: controllers.RegisterProviders},
	}
	for _, l := range layers {
		if err := l.register(container); err != nil {
			return fmt.Errorf("failed to register %s providers: %w", l.name, err)
		}
	}

	return container.Provide(NewAppInternal)
}
