// Package loop drives the periodic ticking of a processor: check the
// just-woke-up sentinel file, run one iteration, sleep, repeat. Translated
// from autosuspend's loop() function.
package loop

import (
	"context"
	"log"
	"os"
	"time"
)

// Iterator is the subset of processor.Processor the loop depends on.
type Iterator interface {
	Iteration(ctx context.Context, now time.Time, justWokeUp bool) error
}

// Options configures one run of the loop.
type Options struct {
	Interval    time.Duration
	RunFor      time.Duration // zero means run indefinitely
	WokeUpFile  string
	Now         func() time.Time
}

// Run executes the main loop until ctx is cancelled or, if RunFor is
// positive, until that duration has elapsed. A non-nil error from a single
// iteration is logged and does not stop the loop, mirroring the daemon's
// tolerance for transient probe failures.
func Run(ctx context.Context, it Iterator, opts Options, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		if opts.RunFor > 0 && now().Sub(start) >= opts.RunFor {
			logger.Println("🏁 run-for duration elapsed, stopping loop")
			return
		}

		justWokeUp := false
		if opts.WokeUpFile != "" {
			if _, err := os.Stat(opts.WokeUpFile); err == nil {
				justWokeUp = true
				if err := os.Remove(opts.WokeUpFile); err != nil {
					logger.Printf("⚠️  unable to remove woke-up sentinel %s: %v", opts.WokeUpFile, err)
				}
			}
		}

		if err := it.Iteration(ctx, now(), justWokeUp); err != nil {
			logger.Printf("⚠️  iteration failed: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.Println("🛑 loop stopped")
			return
		case <-ticker.C:
		}
	}
}
