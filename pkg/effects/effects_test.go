package effects

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *log.Logger {
	return log.New(discardWriter{}, "", 0)
}

func TestTemplateCommandSubstitutesPlaceholders(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	result := templateCommand("wake --at={timestamp} --iso={iso}", at)
	assert.Contains(t, result, "--at=")
	assert.Contains(t, result, at.Format(time.RFC3339))
}

func TestScheduleWakeupRunsWakeupCommand(t *testing.T) {
	var ran []string
	e := New(Commands{Suspend: "suspend", Wakeup: "wake {timestamp}"}, discardLogger())
	e.run = func(ctx context.Context, command string, timeout time.Duration) error {
		ran = append(ran, command)
		return nil
	}
	e.ScheduleWakeup(context.Background(), time.Now().Add(time.Hour))
	require.Len(t, ran, 1)
	assert.Contains(t, ran[0], "wake ")
}

func TestScheduleWakeupNoopWhenNoCommandConfigured(t *testing.T) {
	var ran []string
	e := New(Commands{Suspend: "suspend"}, discardLogger())
	e.run = func(ctx context.Context, command string, timeout time.Duration) error {
		ran = append(ran, command)
		return nil
	}
	e.ScheduleWakeup(context.Background(), time.Now())
	assert.Empty(t, ran)
}

func TestNotifyAndSuspendUsesWakeupTemplateWhenWakeupScheduled(t *testing.T) {
	var ran []string
	e := New(Commands{Suspend: "suspend-now", NotifyWakeup: "notify {iso}", NotifyNoWakeup: "notify-none"}, discardLogger())
	e.run = func(ctx context.Context, command string, timeout time.Duration) error {
		ran = append(ran, command)
		return nil
	}
	e.NotifyAndSuspend(context.Background(), time.Now().Add(time.Hour), true)
	require.Len(t, ran, 2)
	assert.Contains(t, ran[0], "notify ")
	assert.Equal(t, "suspend-now", ran[1])
}

func TestNotifyAndSuspendUsesNoWakeupCommandWhenNoneScheduled(t *testing.T) {
	var ran []string
	e := New(Commands{Suspend: "suspend-now", NotifyWakeup: "notify {iso}", NotifyNoWakeup: "notify-none"}, discardLogger())
	e.run = func(ctx context.Context, command string, timeout time.Duration) error {
		ran = append(ran, command)
		return nil
	}
	e.NotifyAndSuspend(context.Background(), time.Time{}, false)
	require.Len(t, ran, 2)
	assert.Equal(t, "notify-none", ran[0])
	assert.Equal(t, "suspend-now", ran[1])
}

func TestNotifyAndSuspendStillSuspendsWhenCommandFails(t *testing.T) {
	var ran []string
	e := New(Commands{Suspend: "suspend-now"}, discardLogger())
	e.run = func(ctx context.Context, command string, timeout time.Duration) error {
		ran = append(ran, command)
		return errors.New("boom")
	}
	e.NotifyAndSuspend(context.Background(), time.Time{}, false)
	require.Len(t, ran, 1)
	assert.Equal(t, "suspend-now", ran[0])
}
