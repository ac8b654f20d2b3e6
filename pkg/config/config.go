// Package config loads the daemon's YAML configuration tree: the general
// suspend/wake policy plus one section per configured activity or wake-up
// probe.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when no -c flag is given.
const DefaultPath = "/etc/autosuspend.conf.yaml"

// DefaultWokeUpFile is the sentinel path the resume hook is expected to
// create; see pkg/loop.
const DefaultWokeUpFile = "/var/run/autosuspend-just-woke-up"

// Config is the immutable, process-lifetime configuration snapshot.
type Config struct {
	General    GeneralConfig            `yaml:"general" json:"general"`
	Activities map[string]ProbeSection  `yaml:"activity" json:"activity"`
	Wakeups    map[string]ProbeSection  `yaml:"wakeup" json:"wakeup"`
	Control    ControlConfig            `yaml:"control" json:"control"`
	Database   DatabaseConfig           `yaml:"database" json:"database"`
}

// GeneralConfig holds the daemon's suspend/wake policy knobs.
type GeneralConfig struct {
	Interval          time.Duration `yaml:"interval" json:"interval"`
	IdleTime          time.Duration `yaml:"idle_time" json:"idle_time"`
	MinSleepTime      time.Duration `yaml:"min_sleep_time" json:"min_sleep_time"`
	WakeupDelta       time.Duration `yaml:"wakeup_delta" json:"wakeup_delta"`
	SuspendCmd        string        `yaml:"suspend_cmd" json:"suspend_cmd"`
	WakeupCmd         string        `yaml:"wakeup_cmd" json:"wakeup_cmd"`
	NotifyCmdWakeup   string        `yaml:"notify_cmd_wakeup" json:"notify_cmd_wakeup"`
	NotifyCmdNoWakeup string        `yaml:"notify_cmd_no_wakeup" json:"notify_cmd_no_wakeup"`
	WokeUpFile        string        `yaml:"woke_up_file" json:"woke_up_file"`
}

// ControlConfig configures the optional status/control HTTP surface
// (pkg/controlserver). An empty Addr disables it.
type ControlConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// DatabaseConfig configures the sqlite tick/probe ledger (pkg/database).
// An empty Path disables persistence and the ledger becomes a no-op.
type DatabaseConfig struct {
	Path    string `yaml:"path" json:"path"`
	WALMode bool   `yaml:"wal_mode" json:"wal_mode"`
}

// ProbeSection is one `activity.<name>` or `wakeup.<name>` section; Config
// keys it by <name>. Sections may also be nested under top-level
// `activity:` / `wakeup:` mappings. Reserved
// keys (enabled, class) are parsed explicitly; everything else is handed to
// the probe's own Create function untouched.
type ProbeSection struct {
	Enabled bool                   `yaml:"enabled" json:"enabled"`
	Class   string                 `yaml:"class" json:"class"`
	Extra   map[string]interface{} `yaml:",inline" json:"-"`
}

// rawGeneral mirrors GeneralConfig with yamlDuration fields, so durations
// accept either "300" (seconds) or "5m" (Go duration syntax).
type rawGeneral struct {
	Interval          yamlDuration `yaml:"interval"`
	IdleTime          yamlDuration `yaml:"idle_time"`
	MinSleepTime      yamlDuration `yaml:"min_sleep_time"`
	WakeupDelta       yamlDuration `yaml:"wakeup_delta"`
	SuspendCmd        string       `yaml:"suspend_cmd"`
	WakeupCmd         string       `yaml:"wakeup_cmd"`
	NotifyCmdWakeup   string       `yaml:"notify_cmd_wakeup"`
	NotifyCmdNoWakeup string       `yaml:"notify_cmd_no_wakeup"`
	WokeUpFile        string       `yaml:"woke_up_file"`
}

type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err == nil {
		return d.parse(raw)
	}
	var seconds float64
	if err := unmarshal(&seconds); err != nil {
		return fmt.Errorf("duration must be a number of seconds or a Go duration string: %w", err)
	}
	*d = yamlDuration(time.Duration(seconds * float64(time.Second)))
	return nil
}

func (d *yamlDuration) parse(raw string) error {
	if raw == "" {
		*d = 0
		return nil
	}
	if dur, err := time.ParseDuration(raw); err == nil {
		*d = yamlDuration(dur)
		return nil
	}
	var seconds float64
	if _, err := fmt.Sscanf(raw, "%f", &seconds); err != nil {
		return fmt.Errorf("invalid duration %q", raw)
	}
	*d = yamlDuration(time.Duration(seconds * float64(time.Second)))
	return nil
}

type rawConfig struct {
	General    rawGeneral              `yaml:"general"`
	Activities map[string]ProbeSection `yaml:"activity"`
	Wakeups    map[string]ProbeSection `yaml:"wakeup"`
	Control    ControlConfig           `yaml:"control"`
	Database   DatabaseConfig          `yaml:"database"`
	Sections   map[string]ProbeSection `yaml:",inline"`
}

// Load reads and validates the configuration file at path. It applies
// defaults (interval=60s, idle_time=300s, min_sleep_time=1200s,
// wakeup_delta=30s, woke_up_file=DefaultWokeUpFile) and then lets
// environment variables override a handful of operational knobs, the
// usual convention for daemons run under systemd's EnvironmentFile=.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := &Config{
		General: GeneralConfig{
			Interval:          orDefault(time.Duration(raw.General.Interval), 60*time.Second),
			IdleTime:          orDefault(time.Duration(raw.General.IdleTime), 300*time.Second),
			MinSleepTime:      orDefault(time.Duration(raw.General.MinSleepTime), 1200*time.Second),
			WakeupDelta:       orDefault(time.Duration(raw.General.WakeupDelta), 30*time.Second),
			SuspendCmd:        raw.General.SuspendCmd,
			WakeupCmd:         raw.General.WakeupCmd,
			NotifyCmdWakeup:   raw.General.NotifyCmdWakeup,
			NotifyCmdNoWakeup: raw.General.NotifyCmdNoWakeup,
			WokeUpFile:        firstNonEmpty(raw.General.WokeUpFile, DefaultWokeUpFile),
		},
		Activities: raw.Activities,
		Wakeups:    raw.Wakeups,
		Control:    raw.Control,
		Database:   raw.Database,
	}
	if cfg.Activities == nil {
		cfg.Activities = map[string]ProbeSection{}
	}
	if cfg.Wakeups == nil {
		cfg.Wakeups = map[string]ProbeSection{}
	}
	for key, section := range raw.Sections {
		if name := strings.TrimPrefix(key, "activity."); name != key {
			cfg.Activities[name] = section
		} else if name := strings.TrimPrefix(key, "wakeup."); name != key {
			cfg.Wakeups[name] = section
		}
	}

	overrideWithEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv applies the handful of environment overrides operators
// reach for when running the daemon under systemd with EnvironmentFile=.
func overrideWithEnv(cfg *Config) {
	if val := os.Getenv("AUTOSUSPEND_SUSPEND_CMD"); val != "" {
		cfg.General.SuspendCmd = val
	}
	if val := os.Getenv("AUTOSUSPEND_WOKE_UP_FILE"); val != "" {
		cfg.General.WokeUpFile = val
	}
	if val := os.Getenv("AUTOSUSPEND_CONTROL_ADDR"); val != "" {
		cfg.Control.Addr = val
	}
	if val := os.Getenv("AUTOSUSPEND_DB_PATH"); val != "" {
		cfg.Database.Path = val
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.General.SuspendCmd) == "" {
		return fmt.Errorf("general.suspend_cmd is required")
	}
	if cfg.General.IdleTime <= 0 {
		return fmt.Errorf("general.idle_time must be positive")
	}
	if cfg.General.MinSleepTime < 0 {
		return fmt.Errorf("general.min_sleep_time must not be negative")
	}
	if cfg.General.WakeupDelta < 0 {
		return fmt.Errorf("general.wakeup_delta must not be negative")
	}
	if cfg.General.Interval <= 0 {
		return fmt.Errorf("general.interval must be positive")
	}

	anyWakeupEnabled := false
	for name, section := range cfg.Wakeups {
		if section.Enabled {
			anyWakeupEnabled = true
			_ = name
		}
	}
	if anyWakeupEnabled && strings.TrimSpace(cfg.General.WakeupCmd) == "" {
		return fmt.Errorf("general.wakeup_cmd is required when a wakeup probe is enabled")
	}

	return nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FileExists reports whether path names a regular file. Kept for startup
// glue that wants to fall back to DefaultPath only when it actually exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
