// Package probe defines the activity/wake-up probe contract that the
// idle-detection core consumes: two sibling interfaces sharing a stable
// name and a namespaced logger, plus the two-variant error classification
// probes use to report a failed check without destabilising the daemon.
package probe

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// Kind distinguishes the two sibling probe interfaces.
type Kind string

const (
	KindActivity Kind = "activity"
	KindWakeup   Kind = "wakeup"
)

// ErrorKind classifies a run-time check failure. Transient errors may
// recover on a later tick; Severe errors indicate the probe is broken
// beyond recovery for this process lifetime. Both are swallowed by the
// aggregator and never crash the daemon — the distinction is advisory for
// operators reading the log, not behavioural.
type ErrorKind int

const (
	Transient ErrorKind = iota
	Severe
)

func (k ErrorKind) String() string {
	if k == Severe {
		return "severe"
	}
	return "transient"
}

// Error wraps a probe check failure with its classification. Use errors.As
// to recover the Kind from an error returned by check().
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s check error: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Transientf builds a *Error of kind Transient.
func Transientf(format string, args ...interface{}) error {
	return &Error{Kind: Transient, Cause: fmt.Errorf(format, args...)}
}

// Severef builds a *Error of kind Severe.
func Severef(format string, args ...interface{}) error {
	return &Error{Kind: Severe, Cause: fmt.Errorf(format, args...)}
}

// WrapTransient wraps an existing error as Transient, preserving it under
// errors.Is/errors.As.
func WrapTransient(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Transient, Cause: err}
}

// WrapSevere wraps an existing error as Severe.
func WrapSevere(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Severe, Cause: err}
}

// Base carries the attributes shared by every probe: a stable name unique
// within its kind, and a stderr logger whose prefix is [<kind>.<name>]
// (e.g. [activity.ping]).
type Base struct {
	name   string
	kind   Kind
	logger *log.Logger
}

// NewBase constructs the shared probe attributes. Concrete probes embed
// Base and call NewBase from their Create constructor.
func NewBase(name string, kind Kind) Base {
	return Base{
		name:   name,
		kind:   kind,
		logger: log.New(os.Stderr, fmt.Sprintf("[%s.%s] ", kind, name), log.LstdFlags),
	}
}

func (b Base) Name() string        { return b.name }
func (b Base) Kind() Kind          { return b.kind }
func (b Base) Logger() *log.Logger { return b.logger }

// Activity is satisfied by any check that can assert the host is
// currently busy. check() returning ("", false) means "no opinion" — it is
// never interpreted as "asserts idle"; the fused verdict across all
// activity probes is an OR.
type Activity interface {
	Name() string
	Check(ctx context.Context) (reason string, busy bool, err error)
}

// Wakeup is satisfied by any check that can report a future instant the
// host must be awake. now is always a timezone-aware UTC instant; the
// probe may return any instant, including ones <= now — the aggregator is
// responsible for discarding non-future results.
type Wakeup interface {
	Name() string
	Check(ctx context.Context, now time.Time) (at time.Time, ok bool, err error)
}
