package notifier

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

const (
	// MaxLineLength keeps every body line under the SMTP limit of 1000 octets.
	MaxLineLength   = 950
	truncatedSuffix = "... [truncated]"
	endOfMessage    = "(end-of-message)"
)

// ComposeBody renders the plain-text mail body for a notification.
func ComposeBody(notification entities.Notification) string {
	var sb strings.Builder

	switch notification.Kind {
	case entities.NotificationPrecondition:
		fmt.Fprintf(&sb, "There was a problem running the lock updater for project %q.\n\n", notification.Project)
		fmt.Fprintf(&sb, "Message: %s\n\n", notification.Cause)
		sb.WriteString("After fixing the problem, run the updater manually to make sure " +
			"there are no other environment setup issues.\n")
	case entities.NotificationAborted:
		fmt.Fprintf(&sb, "The lock update for project %q was aborted; nothing was committed.\n\n", notification.Project)
		fmt.Fprintf(&sb, "Cause: %s\n", notification.Cause)
		writeSection(&sb, "Command output", notification.TestOutput)
		writeVerification(&sb, notification.Verification)
	case entities.NotificationRollback:
		fmt.Fprintf(&sb, "The lock update for project %q failed its tests and was rolled back.\n\n", notification.Project)
		if notification.Cause != "" {
			fmt.Fprintf(&sb, "Cause: %s\n", notification.Cause)
		}
		writeVerification(&sb, notification.Verification)
		writeSection(&sb, "Test output after rollback", notification.RollbackTestOutput)
		writeSection(&sb, "Test output", notification.TestOutput)
		writeChanges(&sb, "Discarded version changes", notification.VersionChanges)
		writeSection(&sb, "Discarded lock diff", notification.DiffText)
	case entities.NotificationSuccess:
		fmt.Fprintf(&sb, "The environment for project %q has been updated and is active.\n", notification.Project)
		writeProblems(&sb, notification)
		writeChanges(&sb, "Version changes", notification.VersionChanges)
		if notification.Git != nil {
			writeSection(&sb, "Git", notification.Git.Report())
		}
		writeSection(&sb, "Lock diff", notification.DiffText)
	default:
		fmt.Fprintf(&sb, "The lock for project %q is already up to date.\n", notification.Project)
	}

	sb.WriteString("\n")
	sb.WriteString(endOfMessage)
	sb.WriteString("\n")
	return TruncateLongLines(sb.String(), MaxLineLength)
}

// TruncateLongLines cuts every line longer than maxLength and marks it as truncated.
func TruncateLongLines(message string, maxLength int) string {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		if len(line) > maxLength {
			lines[i] = line[:maxLength] + truncatedSuffix
		}
	}
	return strings.Join(lines, "\n")
}

func writeProblems(sb *strings.Builder, notification entities.Notification) {
	var problems []string
	for _, rebuild := range notification.AssetRebuilds {
		if !rebuild.Result.OK() {
			problems = append(problems, fmt.Sprintf("%s for %s %s:\n%s",
				rebuild.Result.CommandLine(), rebuild.Change.Package, rebuild.Result.Summary(), rebuild.Result.Output()))
		}
	}
	if notification.Git != nil && !notification.Git.OK {
		problems = append(problems, "The lock file was not pushed: "+notification.Git.Message)
	}
	if len(problems) == 0 {
		return
	}
	sb.WriteString("\nHowever, there were post-update problems which should be reviewed:\n")
	for _, problem := range problems {
		sb.WriteString("\n")
		sb.WriteString(problem)
		sb.WriteString("\n")
	}
}

func writeVerification(sb *strings.Builder, verification *entities.CommandResult) {
	if verification == nil {
		return
	}
	if verification.OK() {
		sb.WriteString("\nThe restored environment passed its tests.\n")
		return
	}
	sb.WriteString("\nWARNING: the restored environment did not verify; it may be inconsistent.\n")
	writeSection(sb, "Verification output", verification.Output())
}

func writeChanges(sb *strings.Builder, title string, changes []entities.VersionChange) {
	if len(changes) == 0 {
		return
	}
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, fmt.Sprintf("- %s (%s)", change.String(),
			entities.ClassifyBump(change.OldVersion, change.NewVersion)))
	}
	writeSection(sb, title, strings.Join(lines, "\n"))
}

func writeSection(sb *strings.Builder, title, body string) {
	body = strings.TrimRight(body, "\n")
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n\n%s\n", title, body)
}
