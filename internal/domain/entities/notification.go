package entities

import "fmt"

// AdminContact is a recipient of run notifications.
type AdminContact struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Address formats the contact as an RFC 5322 mailbox.
func (it AdminContact) Address() string {
	if it.Name == "" {
		return it.Email
	}
	return fmt.Sprintf("%q <%s>", it.Name, it.Email)
}

// NotificationKind classifies a run report.
type NotificationKind string

const (
	NotificationSuccess      NotificationKind = "success"
	NotificationRollback     NotificationKind = "rollback"
	NotificationNoChange     NotificationKind = "no_change"
	NotificationAborted      NotificationKind = "aborted"
	NotificationPrecondition NotificationKind = "precondition"
)

// Notification is the structured payload handed to the notifier.
// Optional evidence is nil when the run never produced it.
type Notification struct {
	Kind     NotificationKind
	Project  string
	Hostname string
	Tier     Tier

	DiffText       string
	TestOutput     string
	VersionChanges []VersionChange
	AssetRebuilds  []AssetRebuildResult
	Git            *GitTransactionResult
	Verification   *CommandResult
	Cause          string

	// RollbackTestOutput is the re-run test output when Verification holds
	// the failed frozen resync instead.
	RollbackTestOutput string

	Recipients []AdminContact
}

// Subject is the mail subject line for the notification.
func (it Notification) Subject() string {
	return fmt.Sprintf("auto-updater info from server %s for project %s", it.Hostname, it.Project)
}
