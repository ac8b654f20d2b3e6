package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "autosuspend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
general:
  suspend_cmd: "systemctl suspend"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.General.Interval)
	assert.Equal(t, 300*time.Second, cfg.General.IdleTime)
	assert.Equal(t, 1200*time.Second, cfg.General.MinSleepTime)
	assert.Equal(t, 30*time.Second, cfg.General.WakeupDelta)
	assert.Equal(t, DefaultWokeUpFile, cfg.General.WokeUpFile)
}

func TestLoadParsesDurationsAndProbeSections(t *testing.T) {
	path := writeConfig(t, `
general:
  interval: 30
  idle_time: 5m
  min_sleep_time: 1200
  wakeup_delta: 45
  suspend_cmd: "systemctl suspend"
  wakeup_cmd: "rtcwake -m no -t {timestamp}"

activity.ping:
  enabled: true
  hosts: "192.168.1.1, 192.168.1.2"

wakeup.file:
  enabled: true
  path: /var/run/wakeup-at
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.General.Interval)
	assert.Equal(t, 5*time.Minute, cfg.General.IdleTime)

	require.Contains(t, cfg.Activities, "ping")
	assert.True(t, cfg.Activities["ping"].Enabled)
	assert.Equal(t, "192.168.1.1, 192.168.1.2", cfg.Activities["ping"].Extra["hosts"])

	require.Contains(t, cfg.Wakeups, "file")
	assert.True(t, cfg.Wakeups["file"].Enabled)
}

func TestLoadRequiresSuspendCmd(t *testing.T) {
	path := writeConfig(t, `
general:
  interval: 30
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "suspend_cmd")
}

func TestLoadRequiresWakeupCmdWhenWakeupEnabled(t *testing.T) {
	path := writeConfig(t, `
general:
  suspend_cmd: "systemctl suspend"

wakeup.file:
  enabled: true
  path: /var/run/wakeup-at
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "wakeup_cmd")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, "general:\n  suspend_cmd: x\n")
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(path+".missing"))
}
