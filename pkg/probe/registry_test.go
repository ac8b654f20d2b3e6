package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
)

type fakeActivity struct {
	name string
	busy bool
}

func (f *fakeActivity) Name() string { return f.name }
func (f *fakeActivity) Check(ctx context.Context) (string, bool, error) {
	if f.busy {
		return "busy", true, nil
	}
	return "", false, nil
}

type fakeWakeup struct {
	name string
	at   time.Time
}

func (f *fakeWakeup) Name() string { return f.name }
func (f *fakeWakeup) Check(ctx context.Context, now time.Time) (time.Time, bool, error) {
	return f.at, true, nil
}

func TestBuildActivitiesUnknownClass(t *testing.T) {
	cfg := &config.Config{
		Activities: map[string]config.ProbeSection{
			"bogus": {Enabled: true, Class: "DoesNotExist"},
		},
	}
	_, err := BuildActivities(cfg)
	assert.ErrorContains(t, err, "unknown probe class")
}

func TestBuildActivitiesEmptyIsError(t *testing.T) {
	cfg := &config.Config{Activities: map[string]config.ProbeSection{}}
	_, err := BuildActivities(cfg)
	assert.ErrorContains(t, err, "no activity probes enabled")
}

func TestBuildActivitiesSkipsDisabled(t *testing.T) {
	RegisterActivity("test.always-busy", func(name string, section config.ProbeSection) (Activity, error) {
		return &fakeActivity{name: name, busy: true}, nil
	})

	cfg := &config.Config{
		Activities: map[string]config.ProbeSection{
			"a": {Enabled: true, Class: "test.always-busy"},
			"b": {Enabled: false, Class: "test.always-busy"},
		},
	}
	probes, err := BuildActivities(cfg)
	require.NoError(t, err)
	require.Len(t, probes, 1)
	assert.Equal(t, "a", probes[0].Name())
}

func TestBuildWakeupsEmptyIsAcceptable(t *testing.T) {
	cfg := &config.Config{Wakeups: map[string]config.ProbeSection{}}
	probes, err := BuildWakeups(cfg)
	require.NoError(t, err)
	assert.Empty(t, probes)
}

func TestBuildWakeupsFactoryError(t *testing.T) {
	RegisterWakeup("test.always-fails", func(name string, section config.ProbeSection) (Wakeup, error) {
		return nil, assertErr
	})
	cfg := &config.Config{
		Wakeups: map[string]config.ProbeSection{
			"w": {Enabled: true, Class: "test.always-fails"},
		},
	}
	_, err := BuildWakeups(cfg)
	assert.Error(t, err)
}

var assertErr = &ConfigurationError{msg: "boom"}
