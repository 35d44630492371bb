package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultToolPath       = "uv"
	defaultLockFile       = "uv.lock"
	defaultVenvDir        = ".venv"
	defaultRestartFile    = "config/tmp/restart.txt"
	defaultKeepBackups    = 30
	defaultRemote         = "origin"
	defaultBranch         = "main"
	defaultPushRetries    = 2
	defaultPushRetryDelay = 10 * time.Second
	defaultSMTPPort       = 25
	defaultResyncTimeout  = 15 * time.Minute
	defaultTestsTimeout   = 30 * time.Minute
	defaultGitTimeout     = 2 * time.Minute
	defaultRebuildTimeout = 10 * time.Minute
	backupDirSuffix       = "_lock_backups"
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Settings is the tool configuration loaded from YAML.
type Settings struct {
	UVPath         string            `yaml:"uv_path"`
	Tier           string            `yaml:"tier"`
	Group          string            `yaml:"group"`
	LockFile       string            `yaml:"lock_file"`
	BackupDir      string            `yaml:"backup_dir"`
	KeepBackups    int               `yaml:"keep_backups"`
	VenvDir        string            `yaml:"venv_dir"`
	RestartFile    string            `yaml:"restart_file"`
	TestCommand    []string          `yaml:"test_command"`
	PreflightTests *bool             `yaml:"preflight_tests"`
	Git            GitSettings       `yaml:"git"`
	Timeouts       TimeoutSettings   `yaml:"timeouts"`
	AssetTriggers  []TriggerSettings `yaml:"asset_triggers"`
	Email          EmailSettings     `yaml:"email"`
	SysAdmins      []AdminContact    `yaml:"sys_admins"`
}

// GitSettings configures the commit transaction.
type GitSettings struct {
	Remote         string        `yaml:"remote"`
	Branch         string        `yaml:"branch"`
	PushRetries    *int          `yaml:"push_retries"`
	PushRetryDelay time.Duration `yaml:"push_retry_delay"`
}

// TimeoutSettings bounds external invocations; durations use Go syntax ("15m").
type TimeoutSettings struct {
	Resync  time.Duration `yaml:"resync"`
	Tests   time.Duration `yaml:"tests"`
	Git     time.Duration `yaml:"git"`
	Rebuild time.Duration `yaml:"rebuild"`
}

// TriggerSettings maps a package to the command run when its version changes.
type TriggerSettings struct {
	Package string   `yaml:"package"`
	Command []string `yaml:"command"`
}

// EmailSettings configures SMTP delivery. An empty host disables email.
type EmailSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	From string `yaml:"from"`
}

// NewSettings reads the configuration file at path. An empty path yields the defaults.
func NewSettings(path string) (*Settings, error) {
	settings := &Settings{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if unmarshalErr := yaml.Unmarshal([]byte(expandEnv(string(data))), settings); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
	}

	settings.applyDefaults()
	if validateErr := validate(settings); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".lockupdater.yaml",
		".lockupdater.yml",
		"lockupdater.yaml",
		"lockupdater.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandEnv replaces ${ENV_VAR} references with their values.
// Unset variables expand to the empty string with a warning.
func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func (it *Settings) applyDefaults() {
	if it.UVPath == "" {
		it.UVPath = defaultToolPath
	}
	if it.LockFile == "" {
		it.LockFile = defaultLockFile
	}
	if it.KeepBackups == 0 {
		it.KeepBackups = defaultKeepBackups
	}
	if it.VenvDir == "" {
		it.VenvDir = defaultVenvDir
	}
	if it.RestartFile == "" {
		it.RestartFile = defaultRestartFile
	}
	if len(it.TestCommand) == 0 {
		it.TestCommand = []string{defaultToolPath, "run", "./run_tests.py"}
	}
	if it.PreflightTests == nil {
		enabled := true
		it.PreflightTests = &enabled
	}
	if it.Git.Remote == "" {
		it.Git.Remote = defaultRemote
	}
	if it.Git.Branch == "" {
		it.Git.Branch = defaultBranch
	}
	if it.Git.PushRetries == nil {
		retries := defaultPushRetries
		it.Git.PushRetries = &retries
	}
	if it.Git.PushRetryDelay == 0 {
		it.Git.PushRetryDelay = defaultPushRetryDelay
	}
	if it.Timeouts.Resync == 0 {
		it.Timeouts.Resync = defaultResyncTimeout
	}
	if it.Timeouts.Tests == 0 {
		it.Timeouts.Tests = defaultTestsTimeout
	}
	if it.Timeouts.Git == 0 {
		it.Timeouts.Git = defaultGitTimeout
	}
	if it.Timeouts.Rebuild == 0 {
		it.Timeouts.Rebuild = defaultRebuildTimeout
	}
	if it.AssetTriggers == nil {
		it.AssetTriggers = []TriggerSettings{{
			Package: "django",
			Command: []string{defaultToolPath, "run", "./manage.py", "collectstatic", "--noinput"},
		}}
	}
	if it.Email.Port == 0 {
		it.Email.Port = defaultSMTPPort
	}
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	if settings.Tier != "" {
		if _, err := ParseTier(settings.Tier); err != nil {
			return err
		}
	}
	if settings.KeepBackups < 1 {
		return errors.New("keep_backups must be at least 1")
	}
	if *settings.Git.PushRetries < 0 {
		return errors.New("git.push_retries must not be negative")
	}
	if settings.Timeouts.Resync < 0 || settings.Timeouts.Tests < 0 ||
		settings.Timeouts.Git < 0 || settings.Timeouts.Rebuild < 0 {
		return errors.New("timeouts must not be negative")
	}
	for i, trigger := range settings.AssetTriggers {
		if trigger.Package == "" {
			return fmt.Errorf("asset_triggers[%d].package is required", i)
		}
		if len(trigger.Command) == 0 {
			return fmt.Errorf("asset_triggers[%d].command is required", i)
		}
	}
	if settings.Email.Host != "" && settings.Email.From == "" {
		return errors.New("email.from is required when email.host is set")
	}
	for i, admin := range settings.SysAdmins {
		if admin.Email == "" {
			return fmt.Errorf("sys_admins[%d].email is required", i)
		}
	}
	return nil
}

// ResolveProject turns the settings into the concrete paths and knobs for the
// project at dir. The tier comes from tierOverride, then the settings, then the host name.
func (it *Settings) ResolveProject(dir, hostname, tierOverride string) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project path: %w", err)
	}

	tier := DetermineTier(hostname)
	for _, raw := range []string{it.Tier, tierOverride} {
		if raw == "" {
			continue
		}
		parsed, parseErr := ParseTier(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		tier = parsed
	}

	name := filepath.Base(absDir)
	backupDir := it.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(absDir), name+backupDirSuffix)
	}

	triggers := make([]AssetTrigger, 0, len(it.AssetTriggers))
	for _, trigger := range it.AssetTriggers {
		triggers = append(triggers, AssetTrigger{
			Package: trigger.Package,
			Command: it.substituteTool(trigger.Command),
		})
	}

	return &Project{
		Name:           name,
		Dir:            absDir,
		LockPath:       it.inProject(absDir, it.LockFile),
		BackupDir:      it.inProject(absDir, backupDir),
		VenvDir:        it.inProject(absDir, it.VenvDir),
		RestartFile:    it.inProject(absDir, it.RestartFile),
		Tier:           tier,
		Group:          it.Group,
		ToolPath:       it.UVPath,
		Hostname:       hostname,
		Remote:         it.Git.Remote,
		Branch:         it.Git.Branch,
		PushRetries:    *it.Git.PushRetries,
		PushRetryDelay: it.Git.PushRetryDelay,
		TestCommand:    it.substituteTool(it.TestCommand),
		PreflightTests: *it.PreflightTests,
		KeepBackups:    it.KeepBackups,
		AssetTriggers:  triggers,
		Timeouts: Timeouts{
			Resync:  it.Timeouts.Resync,
			Tests:   it.Timeouts.Tests,
			Git:     it.Timeouts.Git,
			Rebuild: it.Timeouts.Rebuild,
		},
	}, nil
}

func (it *Settings) inProject(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// substituteTool points a leading "uv" at the configured tool path.
func (it *Settings) substituteTool(command []string) []string {
	resolved := append([]string(nil), command...)
	if len(resolved) > 0 && resolved[0] == defaultToolPath {
		resolved[0] = it.UVPath
	}
	return resolved
}
