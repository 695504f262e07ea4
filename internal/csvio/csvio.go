// Package csvio frames wire records over CSV. It is the one package in this
// repository built on the standard library rather than a third-party
// dependency: no CSV library of any kind appears anywhere in the retrieved
// example corpus, so there is nothing to ground a third-party choice on,
// and encoding/csv already satisfies the non-flexible framing §6 requires
// (FieldsPerRecord left at its default: the first record fixes the column
// count, and any later record with a different count is rejected).
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerflow/paymentsengine/internal/wire"
)

var header = []string{"type", "client", "tx", "amount"}

// Result pairs a successfully parsed wire.Record with a framing error, the
// channel analogue of Result<TransactionRecord>: exactly one field is set.
type Result struct {
	Record wire.Record
	Err    error
}

// Read streams rows from r as wire.Record values over the returned channel,
// one goroutine driving the scan. The header row is consumed and validated
// but not emitted. A column-count mismatch or malformed row produces a
// single Result carrying Err and closes the channel; ctx cancellation stops
// the scan early without emitting an error.
func Read(ctx context.Context, r io.Reader) <-chan Result {
	out := make(chan Result, 64)

	go func() {
		defer close(out)

		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true

		cols, err := reader.Read()
		if err != nil {
			out <- Result{Err: fmt.Errorf("csvio: reading header: %w", err)}
			return
		}
		if err := validateHeader(cols); err != nil {
			out <- Result{Err: err}
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				out <- Result{Err: fmt.Errorf("csvio: reading row: %w", err)}
				return
			}

			rec := wire.Record{Type: row[0], Client: row[1], Tx: row[2]}
			if len(row) > 3 {
				rec.Amount = row[3]
			}

			select {
			case out <- Result{Record: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func validateHeader(cols []string) error {
	if len(cols) < len(header) {
		return fmt.Errorf("csvio: header has %d columns, want at least %d", len(cols), len(header))
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(cols[i]), want) {
			return fmt.Errorf("csvio: header column %d is %q, want %q", i, cols[i], want)
		}
	}
	return nil
}

// Writer streams wire.AccountRow values to an underlying io.Writer one row
// at a time, so the final balance sheet never needs to be buffered in
// memory (§5's O(1) peak output memory).
type Writer struct {
	cw *csv.Writer
}

// NewWriter wraps w and writes the output header immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return nil, fmt.Errorf("csvio: writing header: %w", err)
	}
	return &Writer{cw: cw}, nil
}

// Write emits one account row.
func (w *Writer) Write(row wire.AccountRow) error {
	return w.cw.Write([]string{row.Client, row.Available, row.Held, row.Total, row.Locked})
}

// Flush flushes buffered output and returns any error encountered while
// doing so.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
