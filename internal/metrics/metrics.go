// Package metrics exposes optional Prometheus counters for a run, served
// over HTTP for the lifetime of the process alongside the main fold via
// golang.org/x/sync/errgroup — the same "run cooperating loops, tear down
// together" shape the teacher uses wherever it runs a service loop plus a
// supporting goroutine.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Recorder holds every counter/gauge this program emits.
type Recorder struct {
	Records         *prometheus.CounterVec
	DomainErrors    *prometheus.CounterVec
	JournalEviction *prometheus.CounterVec
	Accounts        prometheus.Gauge

	registry *prometheus.Registry
}

// New builds a Recorder registered against a fresh registry (never the
// global default, so tests can build more than one without collisions).
func New() *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		registry: reg,
		Records: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payments_records_total",
			Help: "Input records processed, partitioned by outcome.",
		}, []string{"outcome"}),
		DomainErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payments_domain_errors_total",
			Help: "Recovered domain errors, partitioned by kind.",
		}, []string{"kind"}),
		JournalEviction: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payments_journal_evictions_total",
			Help: "Journal entries evicted during rollout, partitioned by reason.",
		}, []string{"reason"}),
		Accounts: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "payments_accounts_total",
			Help: "Distinct client accounts seen so far.",
		}),
	}
}

// Serve runs an HTTP server exposing /metrics on addr until ctx is
// cancelled, then shuts it down. It is meant to be run inside an
// errgroup.Group alongside the main fold (see cmd/paymentsengine).
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})
	return group.Wait()
}
