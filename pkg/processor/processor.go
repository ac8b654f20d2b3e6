// Package processor implements the idle-detection and suspend-decision
// state machine: one tick evaluates activity and wakeup probes and decides
// whether the host should be suspended. Translated from autosuspend's
// Processor.iteration, kept as a single synchronous method in the style of
// an orchestrator's request-driven operations.
package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

// Suspender triggers suspension, optionally passing the scheduled wakeup
// time (zero value if none).
type Suspender func(wakeupAt time.Time, hasWakeup bool) error

// WakeupScheduler arms a wakeup alarm for the given time.
type WakeupScheduler func(at time.Time) error

// Config bundles the tunables that drive one Processor's decisions.
type Config struct {
	IdleTime     time.Duration
	MinSleepTime time.Duration
	WakeupDelta  time.Duration
	AllChecks    bool
}

// Processor holds probe lists, tunables, and the idle-since watermark that
// persists across ticks.
type Processor struct {
	activities []probe.Activity
	wakeups    []probe.Wakeup
	cfg        Config
	suspend    Suspender
	scheduleAt WakeupScheduler
	logger     *log.Logger

	mu        sync.Mutex
	idleSince time.Time
	hasIdle   bool
}

// New builds a Processor. suspend and scheduleAt are required; a nil logger
// falls back to the standard logger.
func New(activities []probe.Activity, wakeups []probe.Wakeup, cfg Config, suspend Suspender, scheduleAt WakeupScheduler, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		activities: activities,
		wakeups:    wakeups,
		cfg:        cfg,
		suspend:    suspend,
		scheduleAt: scheduleAt,
		logger:     logger,
	}
}

func (p *Processor) resetState(reason string) {
	p.logger.Printf("🔄 %s. Resetting idle state", reason)
	p.hasIdle = false
	p.idleSince = time.Time{}
}

// Iteration runs a single tick: probe activity and wakeups, then decide
// whether to reset, wait, or suspend. now is the timestamp to evaluate
// against; justWokeUp signals the host just resumed from a previous
// suspension and all accumulated idle state must be discarded.
func (p *Processor) Iteration(ctx context.Context, now time.Time, justWokeUp bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Println("🔍 Starting new check iteration")

	active := probe.ExecuteActivityChecks(ctx, p.activities, p.cfg.AllChecks, p.logger)
	p.logger.Printf("Activity checks complete. active=%v", active)

	wakeupAt, hasWakeup := probe.ExecuteWakeups(ctx, p.wakeups, now, p.logger)
	if hasWakeup {
		wakeupAt = wakeupAt.Add(-p.cfg.WakeupDelta)
		p.logger.Printf("Scheduled wakeup candidate at %s (after delta)", wakeupAt)
	}

	if justWokeUp {
		p.resetState("Just woke up from suspension")
		return nil
	}
	if active {
		p.resetState("System is active")
		return nil
	}

	if !p.hasIdle {
		p.hasIdle = true
		p.idleSince = now
	}
	p.logger.Printf("System is idle since %s", p.idleSince)

	idleFor := now.Sub(p.idleSince)
	if idleFor <= p.cfg.IdleTime {
		p.logger.Printf("Desired idle time of %s not reached yet (idle for %s)", p.cfg.IdleTime, idleFor)
		return nil
	}

	p.logger.Println("✅ System is idle long enough")

	if hasWakeup {
		wakeupIn := wakeupAt.Sub(now)
		if wakeupIn < p.cfg.MinSleepTime {
			p.logger.Printf("🛑 Would wake up in %s, below minimum sleep time of %s. Not suspending.", wakeupIn, p.cfg.MinSleepTime)
			return nil
		}
		p.logger.Printf("⏰ Scheduling wakeup at %s", wakeupAt)
		if err := p.scheduleAt(wakeupAt); err != nil {
			return fmt.Errorf("scheduling wakeup: %w", err)
		}
	}

	p.resetState("Going to suspend")
	p.logger.Println("🚨 Suspending now")
	if err := p.suspend(wakeupAt, hasWakeup); err != nil {
		return fmt.Errorf("suspending: %w", err)
	}
	return nil
}
