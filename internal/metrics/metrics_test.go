package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ledgerflow/paymentsengine/internal/metrics"
)

func TestRecorderCountersAreIndependentPerInstance(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.Records.WithLabelValues("applied").Inc()
	a.Records.WithLabelValues("applied").Inc()
	b.Records.WithLabelValues("applied").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(a.Records.WithLabelValues("applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(b.Records.WithLabelValues("applied")))
}

func TestJournalEvictionAndDomainErrorCounters(t *testing.T) {
	r := metrics.New()

	r.JournalEviction.WithLabelValues("terminal").Inc()
	r.DomainErrors.WithLabelValues("account locked").Inc()
	r.Accounts.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.JournalEviction.WithLabelValues("terminal")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.DomainErrors.WithLabelValues("account locked")))
	assert.Equal(t, float64(3), testutil.ToFloat64(r.Accounts))
}
