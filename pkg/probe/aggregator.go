package probe

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ExecuteActivityChecks runs probes in declared order and returns whether
// any of them reports the host busy. With runAll=false (the production
// path) it short-circuits as soon as the first probe in order matches,
// saving the cost of the remaining probes — the number of probes actually
// invoked is exactly 1 + the index of the first match. With runAll=true
// (the daemon's -a debug flag) every probe is invoked regardless, so an
// operator can see every matching reason in one tick.
//
// Checks run sequentially, matching the declared order exactly; a parallel
// variant is tempting given Go's cheap goroutines, but a parallel
// short-circuit can only preserve the same invocation count by serialising
// on each lower-index probe anyway, so sequential execution is simpler and
// was kept.
func ExecuteActivityChecks(ctx context.Context, probes []Activity, runAll bool, logger *log.Logger) bool {
	matched := false
	for _, p := range probes {
		reason, busy, err := p.Check(ctx)
		if err != nil {
			logProbeError(logger, p.Name(), err)
			continue
		}
		if busy {
			logger.Printf("check %s matched. reason: %s", p.Name(), reason)
			matched = true
			if !runAll {
				break
			}
		}
	}
	return matched
}

// ExecuteWakeups runs every wake-up probe concurrently — the combinator is
// min, so there is no short-circuit to preserve and no ordering
// requirement beyond "all complete before the result is used" — and
// returns the earliest future instant reported, or ok=false if none report
// one. Results at or before now are discarded with a warning: a probe
// misbehaving by reporting a past wakeup must not affect the decision.
func ExecuteWakeups(ctx context.Context, probes []Wakeup, now time.Time, logger *log.Logger) (time.Time, bool) {
	if len(probes) == 0 {
		return time.Time{}, false
	}

	type outcome struct {
		at  time.Time
		ok  bool
		err error
	}

	results := make([]outcome, len(probes))
	var wg sync.WaitGroup
	wg.Add(len(probes))
	for i, p := range probes {
		go func(i int, p Wakeup) {
			defer wg.Done()
			at, ok, err := p.Check(ctx, now)
			results[i] = outcome{at: at, ok: ok, err: err}
		}(i, p)
	}
	wg.Wait()

	var (
		earliest time.Time
		found    bool
	)
	for i, p := range probes {
		res := results[i]
		if res.err != nil {
			logProbeError(logger, p.Name(), res.err)
			continue
		}
		if !res.ok {
			continue
		}
		if !res.at.After(now) {
			logger.Printf("⚠️  wakeup %s returned %s, which is not after current time %s; ignoring",
				p.Name(), res.at, now)
			continue
		}
		if !found || res.at.Before(earliest) {
			earliest = res.at
			found = true
		}
	}
	return earliest, found
}

func logProbeError(logger *log.Logger, name string, err error) {
	var probeErr *Error
	if errors.As(err, &probeErr) {
		logger.Printf("probe %s failed (%s): %v", name, probeErr.Kind, probeErr.Cause)
		return
	}
	logger.Printf("probe %s failed: %v", name, err)
}
