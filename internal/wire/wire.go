// Package wire converts between the string-typed rows read from or written
// to CSV and the domain types in package types. Keeping this conversion in
// its own package means internal/csvio never needs to know about amount
// parsing or kind case-folding, and internal/engine never needs to know
// about string formatting — the same separation the teacher draws between
// its RPC-facing types and core execution types.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerflow/paymentsengine/internal/ledger"
	"github.com/ledgerflow/paymentsengine/types"
)

// Record is one row as read from the input CSV: type, client, tx, amount.
// Amount is a string because it may be empty (Dispute/Resolve/Chargeback
// rows carry no amount column value).
type Record struct {
	Type   string
	Client string
	Tx     string
	Amount string
}

// ToDomain converts a wire Record into a types.Record, trimming whitespace
// on every field and case-folding Type. Amount is parsed with the engine's
// fixed precision; an empty or whitespace-only Amount maps to a nil
// pointer, matching Dispute/Resolve/Chargeback rows that carry none.
func (r Record) ToDomain() (types.Record, error) {
	kind, err := types.ParseKind(r.Type)
	if err != nil {
		return types.Record{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(r.Client), 10, 16)
	if err != nil {
		return types.Record{}, fmt.Errorf("wire: invalid client id %q: %w", r.Client, err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(r.Tx), 10, 32)
	if err != nil {
		return types.Record{}, fmt.Errorf("wire: invalid transaction id %q: %w", r.Tx, err)
	}

	var amount *types.Amount
	if text := strings.TrimSpace(r.Amount); text != "" {
		parsed, err := types.ParseAmount(text)
		if err != nil {
			return types.Record{}, fmt.Errorf("wire: invalid amount %q: %w", r.Amount, err)
		}
		amount = &parsed
	}

	return types.Record{
		Kind:   kind,
		Client: types.ClientID(client),
		Tx:     types.TransactionID(tx),
		Amount: amount,
	}, nil
}

// AccountRow is one row as written to the output CSV: client, available,
// held, total, locked.
type AccountRow struct {
	Client    string
	Available string
	Held      string
	Total     string
	Locked    string
}

// FromDomain formats a client's final account status as an output row.
// Available and Held are always present; Total is their sum. Amounts never
// overflow here since Status's own mutators already enforce that bound, but
// the error is still surfaced rather than papered over with a zero value.
func FromDomain(client types.ClientID, status ledger.Status) (AccountRow, error) {
	total, err := status.Total()
	if err != nil {
		return AccountRow{}, fmt.Errorf("wire: client %d: %w", client, err)
	}

	locked := "false"
	if status.Locked {
		locked = "true"
	}

	return AccountRow{
		Client:    strconv.FormatUint(uint64(client), 10),
		Available: status.Available.String(),
		Held:      status.Held.String(),
		Total:     total.String(),
		Locked:    locked,
	}, nil
}
