package activity

import (
	"context"
	"fmt"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
	"github.com/last-emo-boy/autosuspendd/pkg/probe/cmdutil"
)

func init() {
	probe.RegisterActivity("ExternalCommand", NewExternalCommand)
}

// ExternalCommand reports the host busy if a configured shell command exits
// zero. A direct translation of the original's ExternalCommand check.
type ExternalCommand struct {
	probe.Base
	command string
	runner  func(ctx context.Context) error
}

// NewExternalCommand implements probe.ActivityFactory for the
// "ExternalCommand" class.
func NewExternalCommand(name string, section config.ProbeSection) (probe.Activity, error) {
	raw, ok := section.Extra["command"]
	if !ok {
		return nil, fmt.Errorf("missing option command")
	}
	command, ok := raw.(string)
	if !ok || command == "" {
		return nil, fmt.Errorf("missing option command")
	}
	runner := &cmdutil.Runner{Command: command, Timeout: cmdutil.DefaultTimeout}
	return &ExternalCommand{
		Base:    probe.NewBase(name, probe.KindActivity),
		command: command,
		runner:  runner.RunChecked,
	}, nil
}

// Check implements probe.Activity.
func (e *ExternalCommand) Check(ctx context.Context) (string, bool, error) {
	if e.runner(ctx) != nil {
		return "", false, nil
	}
	return fmt.Sprintf("command %q succeeded", e.command), true, nil
}
