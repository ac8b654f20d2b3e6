// Package effects executes the shell commands that carry out a suspend
// decision: arming a wakeup alarm, notifying about the upcoming suspension,
// and suspending the host itself. Translated from autosuspend's
// schedule_wakeup/notify_suspend/execute_suspend functions.
package effects

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/probe/cmdutil"
)

// Commands bundles the shell command templates configured for the three
// effect points. NotifyWakeup and NotifyNoWakeup are optional; an empty
// template disables that notification.
type Commands struct {
	Suspend       string
	Wakeup        string
	NotifyWakeup  string
	NotifyNoWakeup string
	Timeout       time.Duration
}

// Effects runs the configured commands, substituting {timestamp} and {iso}
// placeholders with the scheduled wakeup time where applicable. Failures
// are logged and swallowed: an effect command failing must not crash the
// daemon, only skip that one action.
type Effects struct {
	cmds   Commands
	logger *log.Logger
	run    func(ctx context.Context, command string, timeout time.Duration) error
}

// New builds an Effects runner. A nil logger falls back to the standard
// logger.
func New(cmds Commands, logger *log.Logger) *Effects {
	if logger == nil {
		logger = log.Default()
	}
	if cmds.Timeout == 0 {
		cmds.Timeout = cmdutil.DefaultTimeout
	}
	return &Effects{cmds: cmds, logger: logger, run: runShell}
}

func runShell(ctx context.Context, command string, timeout time.Duration) error {
	runner := &cmdutil.Runner{Command: command, Timeout: timeout}
	return runner.RunChecked(ctx)
}

func (e *Effects) exec(ctx context.Context, purpose, command string) {
	e.logger.Printf("🚨 %s using command: %s", purpose, command)
	if err := e.run(ctx, command, e.cmds.Timeout); err != nil {
		e.logger.Printf("⚠️  unable to execute %s command %q: %v", purpose, command, err)
	}
}

func templateCommand(template string, at time.Time) string {
	replacer := strings.NewReplacer(
		"{timestamp}", strconv.FormatFloat(float64(at.UnixNano())/1e9, 'f', -1, 64),
		"{iso}", at.Format(time.RFC3339),
	)
	return replacer.Replace(template)
}

// ScheduleWakeup arms the wakeup alarm for the given time.
func (e *Effects) ScheduleWakeup(ctx context.Context, at time.Time) {
	if e.cmds.Wakeup == "" {
		return
	}
	e.exec(ctx, "scheduling wakeup", templateCommand(e.cmds.Wakeup, at))
}

// NotifyAndSuspend runs the configured notification command (if any) and
// then suspends the host. hasWakeup reports whether wakeupAt is meaningful.
func (e *Effects) NotifyAndSuspend(ctx context.Context, wakeupAt time.Time, hasWakeup bool) {
	switch {
	case hasWakeup && e.cmds.NotifyWakeup != "":
		e.exec(ctx, "notifying", templateCommand(e.cmds.NotifyWakeup, wakeupAt))
	case !hasWakeup && e.cmds.NotifyNoWakeup != "":
		e.exec(ctx, "notifying", e.cmds.NotifyNoWakeup)
	default:
		e.logger.Println("No suitable notification command configured")
	}
	e.exec(ctx, "suspending", e.cmds.Suspend)
}
