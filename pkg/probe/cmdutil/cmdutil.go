// Package cmdutil is a small composable command-runner: it shells a
// command with a bounded timeout and returns trimmed stdout. Several
// activity and wake-up probes hold one of these as a field instead of
// inheriting a command-invoking base class.
package cmdutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner shells a configured command via /bin/sh -c, matching the
// original implementation's subprocess.check_output(cmd, shell=True).
type Runner struct {
	Command string
	Timeout time.Duration
}

// DefaultTimeout is used when a probe does not configure one explicitly.
const DefaultTimeout = 5 * time.Second

// Run executes the command and returns its trimmed stdout. A non-zero
// exit or a timeout is returned as-is; callers decide whether that maps to
// a Transient or Severe probe error.
func (r Runner) Run(ctx context.Context) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", r.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %q failed: %w (stderr: %s)", r.Command, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunChecked executes the command purely for its exit status, discarding
// output. Used by probes that only care whether the command succeeded
// (e.g. ExternalCommand).
func (r Runner) RunChecked(ctx context.Context) error {
	_, err := r.Run(ctx)
	return err
}
