package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
)

func TestNewPingRequiresHosts(t *testing.T) {
	_, err := NewPing("gw", config.ProbeSection{Extra: map[string]interface{}{}})
	assert.ErrorContains(t, err, "hosts")
}

func TestNewPingParsesHostList(t *testing.T) {
	p, err := NewPing("gw", config.ProbeSection{Extra: map[string]interface{}{
		"hosts": "10.0.0.1, 10.0.0.2",
	}})
	require.NoError(t, err)
	ping := p.(*Ping)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, ping.hosts)
	assert.Equal(t, "gw", p.Name())
}

func TestPingCheckReturnsBusyOnFirstReachableHost(t *testing.T) {
	p := &Ping{
		hosts: []string{"unreachable", "reachable"},
		ping: func(ctx context.Context, host string) error {
			if host == "reachable" {
				return nil
			}
			return errors.New("no route")
		},
	}
	reason, busy, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, busy)
	assert.Contains(t, reason, "reachable")
}

func TestPingCheckReturnsIdleWhenNoneReachable(t *testing.T) {
	p := &Ping{
		hosts: []string{"a", "b"},
		ping: func(ctx context.Context, host string) error {
			return errors.New("no route")
		},
	}
	_, busy, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, busy)
}
