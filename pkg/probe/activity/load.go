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
	probe.RegisterActivity("Load", NewLoad)
}

// Load reports the host busy when the 5-minute load average exceeds a
// configured threshold. Translated from the original's Load check, which
// read os.getloadavg()[1]; Go has no loadavg syscall wrapper in the
// standard library, so /proc/loadavg is read directly on Linux.
type Load struct {
	probe.Base
	threshold float64
	readLoad  func() (float64, error)
}

// NewLoad implements probe.ActivityFactory for the "Load" class.
func NewLoad(name string, section config.ProbeSection) (probe.Activity, error) {
	threshold := 2.5
	if raw, ok := section.Extra["threshold"]; ok {
		parsed, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse threshold as float: %w", err)
		}
		threshold = parsed
	}
	return &Load{
		Base:      probe.NewBase(name, probe.KindActivity),
		threshold: threshold,
		readLoad:  readLoadAvgFive,
	}, nil
}

func readLoadAvgFive() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, fmt.Errorf("unexpected /proc/loadavg format: %q", string(data))
	}
	return strconv.ParseFloat(fields[1], 64)
}

// Check implements probe.Activity.
func (l *Load) Check(ctx context.Context) (string, bool, error) {
	readLoad := l.readLoad
	if readLoad == nil {
		readLoad = readLoadAvgFive
	}
	current, err := readLoad()
	if err != nil {
		return "", false, probe.WrapTransient(err)
	}
	if current > l.threshold {
		return fmt.Sprintf("load %.2f > threshold %.2f", current, l.threshold), true, nil
	}
	return "", false, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
