package probe

import (
	"fmt"
	"sort"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
)

// ActivityFactory builds an Activity probe from its configuration section.
// A ConfigurationError returned here is fatal to daemon startup.
type ActivityFactory func(name string, section config.ProbeSection) (Activity, error)

// WakeupFactory builds a Wakeup probe from its configuration section.
type WakeupFactory func(name string, section config.ProbeSection) (Wakeup, error)

// ConfigurationError indicates a fatal problem resolving or constructing a
// probe from configuration: an unknown class name, a constructor that
// rejects its inputs, or no enabled activity probe at all. The factory
// tables are typed per kind, so a section can only produce a probe of its
// own sibling interface.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// activityFactories and wakeupFactories are the static class-name lookup
// tables the registry resolves `class` (or, absent that, the section name)
// against. Concrete probe packages call RegisterActivity/RegisterWakeup
// from an init() function, following the "explicit registry" guidance over
// reflection-based class lookup.
var (
	activityFactories = map[string]ActivityFactory{}
	wakeupFactories   = map[string]WakeupFactory{}
)

// RegisterActivity adds a named activity probe constructor to the static
// registry. Intended to be called from package init().
func RegisterActivity(class string, factory ActivityFactory) {
	activityFactories[class] = factory
}

// RegisterWakeup adds a named wake-up probe constructor to the static
// registry.
func RegisterWakeup(class string, factory WakeupFactory) {
	wakeupFactories[class] = factory
}

// BuildActivities instantiates every enabled `activity.<name>` section in
// declared (sorted-by-name) order. An empty result is a ConfigurationError:
// the daemon requires at least one activity probe to make any decision.
func BuildActivities(cfg *config.Config) ([]Activity, error) {
	names := sortedKeys(cfg.Activities)
	var out []Activity
	for _, name := range names {
		section := cfg.Activities[name]
		if !section.Enabled {
			continue
		}
		class := classOf(name, section)
		factory, ok := activityFactories[class]
		if !ok {
			return nil, configErrorf("activity.%s: unknown probe class %q", name, class)
		}
		probe, err := factory(name, section)
		if err != nil {
			return nil, configErrorf("activity.%s: %v", name, err)
		}
		out = append(out, probe)
	}
	if len(out) == 0 {
		return nil, configErrorf("no activity probes enabled")
	}
	return out, nil
}

// BuildWakeups instantiates every enabled `wakeup.<name>` section. An empty
// result is acceptable: the daemon may have no scheduled-wakeup knowledge
// at all.
func BuildWakeups(cfg *config.Config) ([]Wakeup, error) {
	names := sortedKeys(cfg.Wakeups)
	var out []Wakeup
	for _, name := range names {
		section := cfg.Wakeups[name]
		if !section.Enabled {
			continue
		}
		class := classOf(name, section)
		factory, ok := wakeupFactories[class]
		if !ok {
			return nil, configErrorf("wakeup.%s: unknown probe class %q", name, class)
		}
		probe, err := factory(name, section)
		if err != nil {
			return nil, configErrorf("wakeup.%s: %v", name, err)
		}
		out = append(out, probe)
	}
	return out, nil
}

func classOf(name string, section config.ProbeSection) string {
	if section.Class != "" {
		return section.Class
	}
	return name
}

func sortedKeys(m map[string]config.ProbeSection) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
