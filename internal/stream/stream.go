// Package stream folds a channel of wire results through a processor,
// honoring context cancellation the way the teacher's long-running
// services exit cleanly on signal. It is the boundary between the
// framing layer (internal/csvio) and the domain (internal/engine): a
// framing error is fatal and stops the fold; a domain error from Apply is
// recovered, observed, and the record is dropped.
package stream

import (
	"context"
	"fmt"

	"github.com/ledgerflow/paymentsengine/internal/csvio"
	"github.com/ledgerflow/paymentsengine/internal/engine"
	"github.com/ledgerflow/paymentsengine/internal/wire"
)

// Outcome classifies what happened to one input record, for callers that
// want to observe per-record results (internal/metrics, logging).
type Outcome int

const (
	Applied Outcome = iota
	Skipped
	Fatal
)

// Observer is notified once per record processed. err is non-nil only for
// Skipped (a domain error) and Fatal (a framing error) outcomes.
type Observer func(outcome Outcome, err error)

// Run drains records from in, applying each to p in order. A csvio
// framing error stops the fold immediately and is returned; a domain error
// from p.Apply is reported to obs (if non-nil) and the record is skipped.
// Run returns nil on a clean end of input or on ctx cancellation.
func Run(ctx context.Context, p *engine.Processor, in <-chan csvio.Result, obs Observer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case result, ok := <-in:
			if !ok {
				return nil
			}
			if result.Err != nil {
				notify(obs, Fatal, result.Err)
				return fmt.Errorf("stream: framing error: %w", result.Err)
			}

			rec, err := result.Record.ToDomain()
			if err != nil {
				notify(obs, Skipped, err)
				continue
			}

			if err := p.Apply(rec); err != nil {
				notify(obs, Skipped, err)
				continue
			}
			notify(obs, Applied, nil)
		}
	}
}

func notify(obs Observer, outcome Outcome, err error) {
	if obs != nil {
		obs(outcome, err)
	}
}

// DrainTo writes every account in p to w, one row per client, stopping at
// the first formatting or write error.
func DrainTo(p *engine.Processor, w *csvio.Writer) error {
	for client, status := range p.Drain() {
		row, err := wire.FromDomain(client, status)
		if err != nil {
			return fmt.Errorf("stream: formatting client %d: %w", client, err)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("stream: writing client %d: %w", client, err)
		}
	}
	return nil
}
