package activity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
	"github.com/last-emo-boy/autosuspendd/pkg/probe/cmdutil"
)

func init() {
	probe.RegisterActivity("Users", NewUsers)
}

// Users reports the host busy if a logged-in user matches configured
// name/terminal/host regular expressions. Translated from the original's
// Users check (psutil.users), using the "who" command instead of a native
// utmp binding since the standard library has no session-enumeration API.
type Users struct {
	probe.Base
	userRegex     *regexp.Regexp
	terminalRegex *regexp.Regexp
	hostRegex     *regexp.Regexp
	listSessions  func(ctx context.Context) ([]whoSession, error)
}

type whoSession struct {
	name     string
	terminal string
	host     string
}

// NewUsers implements probe.ActivityFactory for the "Users" class.
func NewUsers(name string, section config.ProbeSection) (probe.Activity, error) {
	userPattern := ".*"
	if raw, ok := section.Extra["name"]; ok {
		if s, ok := raw.(string); ok {
			userPattern = s
		}
	}
	terminalPattern := ".*"
	if raw, ok := section.Extra["terminal"]; ok {
		if s, ok := raw.(string); ok {
			terminalPattern = s
		}
	}
	hostPattern := ".*"
	if raw, ok := section.Extra["host"]; ok {
		if s, ok := raw.(string); ok {
			hostPattern = s
		}
	}

	userRegex, err := regexp.Compile(fullmatch(userPattern))
	if err != nil {
		return nil, fmt.Errorf("invalid name regular expression: %w", err)
	}
	terminalRegex, err := regexp.Compile(fullmatch(terminalPattern))
	if err != nil {
		return nil, fmt.Errorf("invalid terminal regular expression: %w", err)
	}
	hostRegex, err := regexp.Compile(fullmatch(hostPattern))
	if err != nil {
		return nil, fmt.Errorf("invalid host regular expression: %w", err)
	}

	return &Users{
		Base:          probe.NewBase(name, probe.KindActivity),
		userRegex:     userRegex,
		terminalRegex: terminalRegex,
		hostRegex:     hostRegex,
		listSessions:  listWhoSessions,
	}, nil
}

// fullmatch anchors a Python-style fullmatch regex to Go's partial-match
// semantics.
func fullmatch(pattern string) string {
	return "^(?:" + pattern + ")$"
}

func listWhoSessions(ctx context.Context) ([]whoSession, error) {
	runner := &cmdutil.Runner{Command: "who", Timeout: cmdutil.DefaultTimeout}
	out, err := runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	return parseWhoOutput(out), nil
}

func parseWhoOutput(out string) []whoSession {
	var sessions []whoSession
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		session := whoSession{name: fields[0], terminal: fields[1]}
		for _, field := range fields[2:] {
			if strings.HasPrefix(field, "(") && strings.HasSuffix(field, ")") {
				session.host = strings.Trim(field, "()")
			}
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// Check implements probe.Activity.
func (u *Users) Check(ctx context.Context) (string, bool, error) {
	listSessions := u.listSessions
	if listSessions == nil {
		listSessions = listWhoSessions
	}
	sessions, err := listSessions(ctx)
	if err != nil {
		return "", false, probe.WrapTransient(err)
	}
	for _, s := range sessions {
		if u.userRegex.MatchString(s.name) &&
			u.terminalRegex.MatchString(s.terminal) &&
			u.hostRegex.MatchString(s.host) {
			return fmt.Sprintf("user %s is logged in on terminal %s from %s", s.name, s.terminal, s.host), true, nil
		}
	}
	return "", false, nil
}
