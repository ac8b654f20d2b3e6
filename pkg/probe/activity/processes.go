package activity

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

func init() {
	probe.RegisterActivity("Processes", NewProcesses)
}

// Processes reports the host busy if any configured process name is
// currently running. Translated from the original's Processes check
// (psutil.process_iter), implemented here by scanning /proc/<pid>/comm,
// the idiomatic Go equivalent on Linux.
type Processes struct {
	probe.Base
	names     []string
	listNames func() ([]string, error)
}

// NewProcesses implements probe.ActivityFactory for the "Processes" class.
func NewProcesses(name string, section config.ProbeSection) (probe.Activity, error) {
	raw, ok := section.Extra["processes"]
	if !ok {
		return nil, fmt.Errorf("no processes to check specified")
	}
	list, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("processes must be a comma-separated string")
	}
	var names []string
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no processes to check specified")
	}
	return &Processes{
		Base:      probe.NewBase(name, probe.KindActivity),
		names:     names,
		listNames: listProcessNames,
	}, nil
}

func listProcessNames() ([]string, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if _, err := strconv.Atoi(entry.Name()); err != nil {
			continue
		}
		data, err := os.ReadFile(fmt.Sprintf("/proc/%s/comm", entry.Name()))
		if err != nil {
			// process may have exited between ReadDir and ReadFile; skip.
			continue
		}
		names = append(names, strings.TrimSpace(string(data)))
	}
	return names, nil
}

// Check implements probe.Activity.
func (p *Processes) Check(ctx context.Context) (string, bool, error) {
	listNames := p.listNames
	if listNames == nil {
		listNames = listProcessNames
	}
	running, err := listNames()
	if err != nil {
		return "", false, probe.WrapTransient(err)
	}
	runningSet := make(map[string]struct{}, len(running))
	for _, n := range running {
		runningSet[n] = struct{}{}
	}
	for _, want := range p.names {
		if _, ok := runningSet[want]; ok {
			return fmt.Sprintf("process %s is running", want), true, nil
		}
	}
	return "", false, nil
}
