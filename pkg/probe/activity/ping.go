// Package activity holds the concrete Activity probe implementations,
// translated from autosuspend's original Python checks into idiomatic Go.
package activity

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

func init() {
	probe.RegisterActivity("Ping", NewPing)
}

// Ping reports the host busy if any of a configured list of hosts answers
// a single ICMP echo request. Translated from the original's Ping check.
type Ping struct {
	probe.Base
	hosts []string
	ping  func(ctx context.Context, host string) error
}

// NewPing implements probe.ActivityFactory for the "Ping" class.
func NewPing(name string, section config.ProbeSection) (probe.Activity, error) {
	raw, ok := section.Extra["hosts"]
	if !ok {
		return nil, fmt.Errorf("missing option hosts")
	}
	hostList, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("hosts must be a comma-separated string")
	}
	var hosts []string
	for _, h := range strings.Split(hostList, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("missing option hosts")
	}
	return &Ping{Base: probe.NewBase(name, probe.KindActivity), hosts: hosts, ping: execPing}, nil
}

func execPing(ctx context.Context, host string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "ping", "-q", "-c", "1", host).Run()
}

// Check implements probe.Activity.
func (p *Ping) Check(ctx context.Context) (string, bool, error) {
	ping := p.ping
	if ping == nil {
		ping = execPing
	}
	for _, host := range p.hosts {
		if ping(ctx, host) == nil {
			return fmt.Sprintf("host %s is up", host), true, nil
		}
	}
	return "", false, nil
}
