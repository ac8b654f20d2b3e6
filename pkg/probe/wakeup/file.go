// Package wakeup holds the concrete Wakeup probe implementations,
// translated from autosuspend's original Python checks.
package wakeup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

func init() {
	probe.RegisterWakeup("File", NewFile)
}

// File determines a scheduled wake up from the contents of a file on disk,
// interpreted as a Unix timestamp in seconds UTC. Translated from the
// original's WakeupFile check.
type File struct {
	probe.Base
	path     string
	readFile func(path string) ([]byte, error)
}

// NewFile implements probe.WakeupFactory for the "File" class.
func NewFile(name string, section config.ProbeSection) (probe.Wakeup, error) {
	raw, ok := section.Extra["path"]
	if !ok {
		return nil, fmt.Errorf("missing option path")
	}
	path, ok := raw.(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("missing option path")
	}
	return &File{
		Base:     probe.NewBase(name, probe.KindWakeup),
		path:     path,
		readFile: os.ReadFile,
	}, nil
}

// Check implements probe.Wakeup.
func (f *File) Check(ctx context.Context, now time.Time) (time.Time, bool, error) {
	readFile := f.readFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, probe.WrapTransient(err)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	if len(lines) == 0 {
		return time.Time{}, false, probe.Transientf("wakeup file %s is empty", f.path)
	}
	value := strings.TrimSpace(lines[0])
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, false, probe.WrapTransient(fmt.Errorf("wakeup file %s does not contain a timestamp: %w", f.path, err))
	}
	at := time.Unix(0, int64(seconds*float64(time.Second))).UTC()
	return at, true, nil
}
