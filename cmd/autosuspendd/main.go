// Command autosuspendd runs the idle-detection and suspend-orchestration
// daemon. Flags mirror the original autosuspend CLI: -c config file,
// -a run all activity checks, -r bound the run time, -l logging
// configuration. -control-addr is an addition for the optional control
// HTTP surface and is not part of the original flag set.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/controlserver"
	"github.com/last-emo-boy/autosuspendd/pkg/database"
	"github.com/last-emo-boy/autosuspendd/pkg/effects"
	"github.com/last-emo-boy/autosuspendd/pkg/loop"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
	_ "github.com/last-emo-boy/autosuspendd/pkg/probe/activity"
	_ "github.com/last-emo-boy/autosuspendd/pkg/probe/wakeup"
	"github.com/last-emo-boy/autosuspendd/pkg/processor"
)

// exitConfigError is returned by a failed configuration/startup step, per
// spec.md §6: "exit codes: 0 normal, 2 configuration error."
const exitConfigError = 2

func main() {
	logFile, verbose, remaining := extractLogFlag(os.Args[1:])

	var (
		configFile  = flag.String("c", config.DefaultPath, "the config file to use")
		allChecks   = flag.Bool("a", false, "execute all activity checks even if one already matched")
		runFor      = flag.Duration("r", 0, "if set, run for this duration before exiting instead of running forever")
		controlAddr = flag.String("control-addr", "", "listen address for the optional control HTTP API; empty disables it")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "  -l [file]")
		fmt.Fprintln(flag.CommandLine.Output(), "    \tlogging configuration: bare for verbose stderr output, a path to log to a file, absent for the warning-level stderr default")
	}
	// flag.CommandLine uses flag.ExitOnError, so a parse failure here
	// already exits with status 2 via the flag package itself.
	_ = flag.CommandLine.Parse(remaining)

	logger, cleanupLog := setupLogger(logFile, verbose)
	defer cleanupLog()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fatalConfigError(logger, "failed to load configuration: %v", err)
	}
	if *controlAddr != "" {
		cfg.Control.Addr = *controlAddr
	}

	activities, err := probe.BuildActivities(cfg)
	if err != nil {
		fatalConfigError(logger, "failed to set up activity probes: %v", err)
	}
	wakeups, err := probe.BuildWakeups(cfg)
	if err != nil {
		fatalConfigError(logger, "failed to set up wakeup probes: %v", err)
	}
	logger.Printf("🔍 configured %d activity probe(s), %d wakeup probe(s)", len(activities), len(wakeups))

	var db *database.DB
	if cfg.Database.Path != "" {
		db, err = database.Open(cfg.Database.Path, cfg.Database.WALMode)
		if err != nil {
			fatalConfigError(logger, "failed to open ledger database: %v", err)
		}
		defer db.Close()
	}

	eff := effects.New(effects.Commands{
		Suspend:        cfg.General.SuspendCmd,
		Wakeup:         cfg.General.WakeupCmd,
		NotifyWakeup:   cfg.General.NotifyCmdWakeup,
		NotifyNoWakeup: cfg.General.NotifyCmdNoWakeup,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var lastTick database.Tick
	proc := processor.New(activities, wakeups, processor.Config{
		IdleTime:     cfg.General.IdleTime,
		MinSleepTime: cfg.General.MinSleepTime,
		WakeupDelta:  cfg.General.WakeupDelta,
		AllChecks:    *allChecks,
	}, func(wakeupAt time.Time, hasWakeup bool) error {
		eff.NotifyAndSuspend(ctx, wakeupAt, hasWakeup)
		lastTick.Suspended = true
		return recordTick(db, lastTick, hasWakeup, wakeupAt)
	}, func(at time.Time) error {
		eff.ScheduleWakeup(ctx, at)
		return nil
	}, logger)

	if cfg.Control.Addr != "" {
		server := controlserver.New(cfg.Control.Addr, activities, wakeups, db, proc, func() controlserver.Status {
			return controlserver.Status{Running: true}
		})
		errCh := server.Start()
		logger.Printf("🚀 control API listening on %s", cfg.Control.Addr)
		go func() {
			if err, ok := <-errCh; ok && err != nil {
				logger.Printf("❌ control server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Printf("⚠️  control server shutdown error: %v", err)
			}
		}()
	}

	loop.Run(ctx, proc, loop.Options{
		Interval:   cfg.General.Interval,
		RunFor:     *runFor,
		WokeUpFile: cfg.General.WokeUpFile,
	}, logger)

	logger.Println("✅ autosuspendd shutdown complete")
}

// fatalConfigError logs the failure and exits with exitConfigError,
// matching spec.md §6's documented configuration-error exit code. Unlike
// log.Fatalf (always os.Exit(1)), this keeps the exit code contract
// observable to operators and process supervisors such as systemd's
// RestartPreventExitStatus=.
func fatalConfigError(logger *log.Logger, format string, args ...interface{}) {
	logger.Printf("❌ "+format, args...)
	os.Exit(exitConfigError)
}

// extractLogFlag pulls -l out of the raw arguments ahead of flag.Parse and
// returns the remaining arguments for the standard flag package to parse.
// The standard library flag package has no notion of an optional flag
// value, and registering -l as a flag.String would make flag.Parse
// swallow whatever argument follows a bare -l as its value (even another
// flag like -a) instead of leaving it alone — so -l is handled by hand
// instead: "-l" (bare) means verbose-to-stderr, "-l FILE" or "-l=FILE"
// means log to FILE, and no "-l" at all keeps the warning-level stderr
// default.
func extractLogFlag(args []string) (file string, verbose bool, remaining []string) {
	remaining = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-l" || a == "--l":
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				file = args[i+1]
				i++
			} else {
				verbose = true
			}
		case strings.HasPrefix(a, "-l="):
			file = strings.TrimPrefix(a, "-l=")
		case strings.HasPrefix(a, "--l="):
			file = strings.TrimPrefix(a, "--l=")
		default:
			remaining = append(remaining, a)
		}
	}
	return file, verbose, remaining
}

// setupLogger builds the shared *log.Logger passed to every component.
// file non-empty opens that file for appending and logs there unfiltered.
// Otherwise output goes to stderr: unfiltered if verbose, or filtered down
// to warning/error lines (identified by the ⚠️/❌ markers every warning and
// fatal log line in this daemon carries) for the default, quieter level.
// cleanup must be deferred by the caller to release the log file.
func setupLogger(file string, verbose bool) (logger *log.Logger, cleanup func()) {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("❌ failed to open log file %s: %v", file, err)
			os.Exit(exitConfigError)
		}
		return log.New(f, "", log.LstdFlags), func() { f.Close() }
	}
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	return log.New(&warningFilterWriter{out: os.Stderr}, "", log.LstdFlags), func() {}
}

// warningFilterWriter drops log lines that carry neither the warning (⚠️)
// nor the fatal/error (❌) marker, implementing the "warning-level
// default" logging mode without introducing a full leveled-logging
// dependency for a daemon that otherwise logs through the stdlib log
// package throughout.
type warningFilterWriter struct {
	out io.Writer
}

func (w *warningFilterWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("⚠")) || bytes.Contains(p, []byte("❌")) {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func recordTick(db *database.DB, tick database.Tick, hasWakeup bool, wakeupAt time.Time) error {
	if db == nil {
		return nil
	}
	tick.Timestamp = time.Now()
	if hasWakeup {
		tick.WakeupAt = &wakeupAt
	}
	_, err := db.TickRepository().Insert(&tick, nil)
	if err != nil {
		return fmt.Errorf("recording tick: %w", err)
	}
	return nil
}
