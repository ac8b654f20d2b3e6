package wakeup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
	"github.com/last-emo-boy/autosuspendd/pkg/probe/cmdutil"
)

func init() {
	probe.RegisterWakeup("Command", NewCommand)
}

// Command determines a scheduled wake up by running a configured shell
// command. The command must print a Unix timestamp in seconds UTC, or
// nothing if no wake up is planned. Translated from the original's
// WakeupCommand check.
type Command struct {
	probe.Base
	command string
	run     func(ctx context.Context) (string, error)
}

// NewCommand implements probe.WakeupFactory for the "Command" class.
func NewCommand(name string, section config.ProbeSection) (probe.Wakeup, error) {
	raw, ok := section.Extra["command"]
	if !ok {
		return nil, fmt.Errorf("missing command specification")
	}
	command, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("missing command specification")
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, fmt.Errorf("missing command specification")
	}
	runner := &cmdutil.Runner{Command: command, Timeout: cmdutil.DefaultTimeout}
	return &Command{
		Base:    probe.NewBase(name, probe.KindWakeup),
		command: command,
		run:     runner.Run,
	}, nil
}

// Check implements probe.Wakeup.
func (c *Command) Check(ctx context.Context, now time.Time) (time.Time, bool, error) {
	run := c.run
	if run == nil {
		runner := &cmdutil.Runner{Command: c.command, Timeout: cmdutil.DefaultTimeout}
		run = runner.Run
	}
	out, err := run(ctx)
	if err != nil {
		return time.Time{}, false, probe.WrapTransient(fmt.Errorf("command %q failed: %w", c.command, err))
	}
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if line == "" {
		return time.Time{}, false, nil
	}
	seconds, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return time.Time{}, false, probe.WrapTransient(fmt.Errorf("command %q produced a non-timestamp output: %w", c.command, err))
	}
	at := time.Unix(0, int64(seconds*float64(time.Second))).UTC()
	return at, true, nil
}
