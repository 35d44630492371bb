//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"path/filepath"
	"time"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

const defaultProjectDir = "/srv/apps/shop"

// ProjectBuilder helps create resolved test projects with a fluent interface.
// Every path derives from the project directory unless set explicitly.
type ProjectBuilder struct {
	*testkit.BaseBuilder
	dir            string
	backupDir      string
	tier           entities.Tier
	group          string
	hostname       string
	pushRetries    int
	preflightTests bool
	keepBackups    int
	triggers       []entities.AssetTrigger
}

// NewProjectBuilder creates a new project builder with sensible defaults.
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		dir:         defaultProjectDir,
		tier:        entities.TierStaging,
		group:       "www",
		hostname:    "dweb01",
		keepBackups: 30,
		triggers:    defaultTriggers(),
	}
}

// WithDir sets the project directory.
func (b *ProjectBuilder) WithDir(dir string) *ProjectBuilder {
	b.dir = dir
	return b
}

// WithBackupDir sets the snapshot directory.
func (b *ProjectBuilder) WithBackupDir(dir string) *ProjectBuilder {
	b.backupDir = dir
	return b
}

// WithTier sets the deployment tier.
func (b *ProjectBuilder) WithTier(tier entities.Tier) *ProjectBuilder {
	b.tier = tier
	return b
}

// WithGroup sets the owning group; empty means "infer".
func (b *ProjectBuilder) WithGroup(group string) *ProjectBuilder {
	b.group = group
	return b
}

// WithHostname sets the host name reported in notifications.
func (b *ProjectBuilder) WithHostname(hostname string) *ProjectBuilder {
	b.hostname = hostname
	return b
}

// WithPushRetries sets how many times a failed push is retried.
func (b *ProjectBuilder) WithPushRetries(retries int) *ProjectBuilder {
	b.pushRetries = retries
	return b
}

// WithPreflightTests toggles the test run before snapshotting.
func (b *ProjectBuilder) WithPreflightTests(enabled bool) *ProjectBuilder {
	b.preflightTests = enabled
	return b
}

// WithKeepBackups sets the snapshot retention count.
func (b *ProjectBuilder) WithKeepBackups(keep int) *ProjectBuilder {
	b.keepBackups = keep
	return b
}

// WithAssetTriggers replaces the asset rebuild triggers.
func (b *ProjectBuilder) WithAssetTriggers(triggers ...entities.AssetTrigger) *ProjectBuilder {
	b.triggers = triggers
	return b
}

// Build creates the project (satisfies testkit.Builder interface).
func (b *ProjectBuilder) Build() interface{} {
	return b.BuildProject()
}

// BuildProject creates the project with a concrete return type.
func (b *ProjectBuilder) BuildProject() *entities.Project {
	backupDir := b.backupDir
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(b.dir), filepath.Base(b.dir)+"_lock_backups")
	}
	return &entities.Project{
		Name:           filepath.Base(b.dir),
		Dir:            b.dir,
		LockPath:       filepath.Join(b.dir, "uv.lock"),
		BackupDir:      backupDir,
		VenvDir:        filepath.Join(b.dir, ".venv"),
		RestartFile:    filepath.Join(b.dir, "config", "tmp", "restart.txt"),
		Tier:           b.tier,
		Group:          b.group,
		ToolPath:       "uv",
		Hostname:       b.hostname,
		Remote:         "origin",
		Branch:         "main",
		PushRetries:    b.pushRetries,
		PushRetryDelay: time.Millisecond,
		TestCommand:    []string{"uv", "run", "./run_tests.py"},
		PreflightTests: b.preflightTests,
		KeepBackups:    b.keepBackups,
		AssetTriggers:  append([]entities.AssetTrigger(nil), b.triggers...),
		Timeouts: entities.Timeouts{
			Resync:  time.Minute,
			Tests:   time.Minute,
			Git:     time.Minute,
			Rebuild: time.Minute,
		},
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProjectBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.dir = defaultProjectDir
	b.backupDir = ""
	b.tier = entities.TierStaging
	b.group = "www"
	b.hostname = "dweb01"
	b.pushRetries = 0
	b.preflightTests = false
	b.keepBackups = 30
	b.triggers = defaultTriggers()
	return b
}

// Clone creates a deep copy of the ProjectBuilder.
func (b *ProjectBuilder) Clone() testkit.Builder {
	return &ProjectBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		dir:            b.dir,
		backupDir:      b.backupDir,
		tier:           b.tier,
		group:          b.group,
		hostname:       b.hostname,
		pushRetries:    b.pushRetries,
		preflightTests: b.preflightTests,
		keepBackups:    b.keepBackups,
		triggers:       append([]entities.AssetTrigger(nil), b.triggers...),
	}
}

func defaultTriggers() []entities.AssetTrigger {
	return []entities.AssetTrigger{{
		Package: "django",
		Command: []string{"uv", "run", "./manage.py", "collectstatic", "--noinput"},
	}}
}
