package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

const (
	NotifierSMTP = "smtp"
	NotifierLog  = "log"
)

// NotifierFactory is a constructor function that creates a NotifierRepository from email settings.
type NotifierFactory func(settings entities.EmailSettings) domainRepos.NotifierRepository

// NotifierRegistry manages all registered notification channels.
type NotifierRegistry struct {
	notifiers map[string]NotifierFactory
}

// NewNotifierRegistry creates an empty notifier registry.
func NewNotifierRegistry() *NotifierRegistry {
	return &NotifierRegistry{
		notifiers: make(map[string]NotifierFactory),
	}
}

// Register adds a notifier factory under the given name (e.g. "smtp").
func (r *NotifierRegistry) Register(name string, factory NotifierFactory) {
	r.notifiers[name] = factory
}

// Get returns a configured notifier instance for the given name.
func (r *NotifierRegistry) Get(name string, settings entities.EmailSettings) (domainRepos.NotifierRepository, error) {
	factory, ok := r.notifiers[name]
	if !ok {
		return nil, fmt.Errorf("unknown notifier type: %q", name)
	}
	return factory(settings), nil
}

// ForSettings picks SMTP when a mail host is configured and falls back to the log channel.
func (r *NotifierRegistry) ForSettings(settings entities.EmailSettings) (domainRepos.NotifierRepository, error) {
	if settings.Host != "" {
		return r.Get(NotifierSMTP, settings)
	}
	return r.Get(NotifierLog, settings)
}

// Names returns the sorted list of registered notifier names.
func (r *NotifierRegistry) Names() []string {
	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
