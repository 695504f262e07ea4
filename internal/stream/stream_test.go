package stream_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ledgerflow/paymentsengine/internal/csvio"
	"github.com/ledgerflow/paymentsengine/internal/engine"
	"github.com/ledgerflow/paymentsengine/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newProcessor(t *testing.T) *engine.Processor {
	t.Helper()
	p, err := engine.New(1000, 1000000)
	require.NoError(t, err)
	return p
}

func TestRunAppliesAllRecords(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,5.0\nwithdrawal,1,2,2.0\n"
	ctx := context.Background()

	p := newProcessor(t)
	var applied, skipped int
	err := stream.Run(ctx, p, csvio.Read(ctx, strings.NewReader(input)), func(outcome stream.Outcome, _ error) {
		switch outcome {
		case stream.Applied:
			applied++
		case stream.Skipped:
			skipped++
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 0, skipped)

	var buf bytes.Buffer
	w, err := csvio.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, stream.DrainTo(p, w))
	require.NoError(t, w.Flush())
	assert.Contains(t, buf.String(), "1,3,0,3,false")
}

func TestRunSkipsDomainErrorsAndContinues(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.0\nwithdrawal,1,2,5.0\ndeposit,1,3,2.0\n"
	ctx := context.Background()

	p := newProcessor(t)
	var outcomes []stream.Outcome
	err := stream.Run(ctx, p, csvio.Read(ctx, strings.NewReader(input)), func(outcome stream.Outcome, _ error) {
		outcomes = append(outcomes, outcome)
	})
	require.NoError(t, err)
	require.Equal(t, []stream.Outcome{stream.Applied, stream.Skipped, stream.Applied}, outcomes)
}

func TestRunStopsOnFramingError(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.0,extra\n"
	ctx := context.Background()

	p := newProcessor(t)
	var outcomes []stream.Outcome
	err := stream.Run(ctx, p, csvio.Read(ctx, strings.NewReader(input)), func(outcome stream.Outcome, _ error) {
		outcomes = append(outcomes, outcome)
	})
	require.Error(t, err)
	require.Equal(t, []stream.Outcome{stream.Fatal}, outcomes)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.0\n"
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	p := newProcessor(t)
	err := stream.Run(ctx, p, csvio.Read(ctx, strings.NewReader(input)), nil)
	require.NoError(t, err)
}
