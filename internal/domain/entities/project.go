package entities

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the deployment environment class that selects the dependency group to resync.
type Tier string

const (
	TierLocal      Tier = "local"
	TierStaging    Tier = "staging"
	TierProduction Tier = "production"
)

// DetermineTier derives the tier from a host name: hosts starting with "d" or "q"
// are staging, hosts starting with "p" are production, anything else is local.
func DetermineTier(hostname string) Tier {
	name := strings.ToLower(strings.TrimSpace(hostname))
	switch {
	case strings.HasPrefix(name, "d"), strings.HasPrefix(name, "q"):
		return TierStaging
	case strings.HasPrefix(name, "p"):
		return TierProduction
	default:
		return TierLocal
	}
}

// ParseTier validates an explicitly configured tier name.
func ParseTier(raw string) (Tier, error) {
	switch tier := Tier(strings.ToLower(strings.TrimSpace(raw))); tier {
	case TierLocal, TierStaging, TierProduction:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown tier %q (expected local, staging or production)", raw)
	}
}

// Timeouts bounds each kind of external invocation. A zero value means no limit.
type Timeouts struct {
	Resync  time.Duration
	Tests   time.Duration
	Git     time.Duration
	Rebuild time.Duration
}

// AssetTrigger names a package whose version change requires a rebuild command.
type AssetTrigger struct {
	Package string
	Command []string
}

// Project is the fully resolved description of the managed project for one run.
type Project struct {
	Name        string
	Dir         string
	LockPath    string
	BackupDir   string
	VenvDir     string
	RestartFile string
	Tier        Tier
	Group       string
	ToolPath    string
	Hostname    string

	Remote         string
	Branch         string
	PushRetries    int
	PushRetryDelay time.Duration

	TestCommand    []string
	PreflightTests bool
	KeepBackups    int
	AssetTriggers  []AssetTrigger
	Timeouts       Timeouts
}

// ResyncGroup is the dependency group passed to the resync tool.
func (it *Project) ResyncGroup() string {
	return string(it.Tier)
}

// ManagedPaths lists the directories whose group ownership is reconciled after a run.
func (it *Project) ManagedPaths() []string {
	paths := make([]string, 0, 2) //nolint:mnd // venv and backups
	if it.VenvDir != "" {
		paths = append(paths, it.VenvDir)
	}
	if it.BackupDir != "" {
		paths = append(paths, it.BackupDir)
	}
	return paths
}
