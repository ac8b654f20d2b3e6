package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
)

func TestNewExternalCommandRequiresCommand(t *testing.T) {
	_, err := NewExternalCommand("ext", config.ProbeSection{Extra: map[string]interface{}{}})
	assert.ErrorContains(t, err, "command")
}

func TestNewExternalCommandParsesCommand(t *testing.T) {
	p, err := NewExternalCommand("ext", config.ProbeSection{Extra: map[string]interface{}{
		"command": "true",
	}})
	require.NoError(t, err)
	assert.Equal(t, "true", p.(*ExternalCommand).command)
}

func TestExternalCommandCheckBusyOnSuccess(t *testing.T) {
	e := &ExternalCommand{command: "true", runner: func(ctx context.Context) error { return nil }}
	reason, busy, err := e.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, busy)
	assert.Contains(t, reason, "true")
}

func TestExternalCommandCheckIdleOnFailure(t *testing.T) {
	e := &ExternalCommand{command: "false", runner: func(ctx context.Context) error { return errors.New("exit 1") }}
	_, busy, err := e.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, busy)
}
