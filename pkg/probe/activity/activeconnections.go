package activity

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

func init() {
	probe.RegisterActivity("ActiveConnections", NewActiveConnections)
}

// ActiveConnections reports the host busy if any configured local port has
// an ESTABLISHED TCP connection. Translated from the original's
// ActiveConnection check (psutil.net_connections); Go has no cross-platform
// connection-table API in the standard library, so /proc/net/tcp and
// /proc/net/tcp6 are parsed directly, mirroring what psutil itself does on
// Linux.
type ActiveConnections struct {
	probe.Base
	ports           map[int]struct{}
	listEstablished func() ([]int, error)
}

// NewActiveConnections implements probe.ActivityFactory for the
// "ActiveConnections" class.
func NewActiveConnections(name string, section config.ProbeSection) (probe.Activity, error) {
	raw, ok := section.Extra["ports"]
	if !ok {
		return nil, fmt.Errorf("missing option ports")
	}
	list, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("ports must be a comma-separated string")
	}
	ports := make(map[int]struct{})
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("ports must be integers: %w", err)
		}
		ports[port] = struct{}{}
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("missing option ports")
	}
	return &ActiveConnections{
		Base:            probe.NewBase(name, probe.KindActivity),
		ports:           ports,
		listEstablished: listEstablishedLocalPorts,
	}, nil
}

const tcpEstablished = "01"

func listEstablishedLocalPorts() ([]int, error) {
	var ports []int
	for _, path := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		found, err := parseProcNetTCP(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		ports = append(ports, found...)
	}
	return ports, nil
}

func parseProcNetTCP(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ports []int
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // header line
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		if fields[3] != tcpEstablished {
			continue
		}
		localAddr := fields[1]
		parts := strings.Split(localAddr, ":")
		if len(parts) != 2 {
			continue
		}
		port, err := strconv.ParseInt(parts[1], 16, 32)
		if err != nil {
			continue
		}
		ports = append(ports, int(port))
	}
	return ports, scanner.Err()
}

// Check implements probe.Activity.
func (a *ActiveConnections) Check(ctx context.Context) (string, bool, error) {
	listEstablished := a.listEstablished
	if listEstablished == nil {
		listEstablished = listEstablishedLocalPorts
	}
	established, err := listEstablished()
	if err != nil {
		return "", false, probe.WrapTransient(err)
	}
	var matched []int
	for _, port := range established {
		if _, ok := a.ports[port]; ok {
			matched = append(matched, port)
		}
	}
	if len(matched) > 0 {
		return fmt.Sprintf("ports %v are connected", matched), true, nil
	}
	return "", false, nil
}
