// Command paymentsengine reads a CSV transaction log and writes the final
// per-client balance sheet to stdout. main follows the same
// BuildFlagSet -> BuildViper -> BuildConfig calling convention as the
// teacher's own cmd/simulator/main/main.go, then installs the logger the
// way cmd/dbmigrate/main.go and network.go do.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerflow/paymentsengine/internal/config"
	"github.com/ledgerflow/paymentsengine/internal/csvio"
	"github.com/ledgerflow/paymentsengine/internal/engine"
	"github.com/ledgerflow/paymentsengine/internal/journal"
	"github.com/ledgerflow/paymentsengine/internal/logging"
	"github.com/ledgerflow/paymentsengine/internal/metrics"
	"github.com/ledgerflow/paymentsengine/internal/stream"
	"github.com/ledgerflow/paymentsengine/types"

	luxlog "github.com/luxfi/log"
)

var logger luxlog.Logger

func main() {
	fs := config.BuildFlagSet()
	v, err := config.BuildViper(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't build viper: %s\n", err)
		os.Exit(1)
	}

	cfg, err := config.BuildConfig(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	logger, err = logging.Setup(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: paymentsengine [flags] <input-file>")
		os.Exit(1)
	}

	if err := run(cfg, fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rec := newRecorder(cfg)

	p, err := engine.New(cfg.JournalRollout, cfg.JournalCapacity,
		journal.WithEvictionObserver(func(tx types.TransactionID, reason journal.EvictionReason) {
			if rec == nil {
				return
			}
			label := "capacity"
			if reason == journal.EvictedTerminal {
				label = "terminal"
			}
			rec.JournalEviction.WithLabelValues(label).Inc()
		}))
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" && rec != nil {
		group.Go(func() error { return rec.Serve(gctx, cfg.MetricsAddr) })
	}

	group.Go(func() error {
		in := csvio.Read(gctx, f)
		err := stream.Run(gctx, p, in, func(outcome stream.Outcome, err error) {
			observeOutcome(rec, outcome, err)
		})
		cancel()
		return err
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if rec != nil {
		var count int
		for range p.Drain() {
			count++
		}
		rec.Accounts.Set(float64(count))
	}

	w, err := csvio.NewWriter(os.Stdout)
	if err != nil {
		return err
	}
	if err := stream.DrainTo(p, w); err != nil {
		return err
	}
	return w.Flush()
}

func newRecorder(cfg config.Config) *metrics.Recorder {
	if cfg.MetricsAddr == "" {
		return nil
	}
	return metrics.New()
}

func observeOutcome(rec *metrics.Recorder, outcome stream.Outcome, err error) {
	var label string
	switch outcome {
	case stream.Applied:
		label = "applied"
	case stream.Skipped:
		label = "skipped"
	case stream.Fatal:
		label = "fatal"
	}
	if rec != nil {
		rec.Records.WithLabelValues(label).Inc()
	}
	if outcome == stream.Skipped && err != nil {
		logger.Error("dropped record", "reason", err)
		if rec != nil {
			var engErr *engine.Error
			if errors.As(err, &engErr) {
				rec.DomainErrors.WithLabelValues(engErr.Kind.String()).Inc()
			}
		}
	}
}
