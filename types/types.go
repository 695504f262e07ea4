// Package types defines the primitive domain types shared across the
// payments engine: client and transaction identifiers, the fixed-precision
// amount type, and the transaction kind enumeration. It mirrors the role of
// a "core/types" package: small, dependency-free, imported by every other
// domain package.
package types

import (
	"fmt"
	"strings"

	"github.com/ledgerflow/paymentsengine/decimal"
)

// prec4 is the phantom precision type for the four fractional digits the
// payments engine uses for every amount.
type prec4 struct{}

func (prec4) N() uint8 { return 4 }

// Amount is a non-negative decimal with four fractional digits.
type Amount = decimal.Decimal[prec4]

// ParseAmount parses text in the engine's fixed precision.
func ParseAmount(s string) (Amount, error) {
	return decimal.Parse[prec4](s)
}

// MaxAmount is the largest representable Amount.
func MaxAmount() Amount {
	return decimal.Max[prec4]()
}

// ClientID identifies a client account.
type ClientID uint16

// TransactionID identifies a single transaction record.
type TransactionID uint32

// Kind enumerates the five transaction record kinds.
type Kind uint8

const (
	Deposit Kind = iota
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses a transaction kind case-insensitively from one of the
// five reference names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	case "dispute":
		return Dispute, nil
	case "resolve":
		return Resolve, nil
	case "chargeback":
		return Chargeback, nil
	default:
		return 0, fmt.Errorf("types: unrecognized transaction kind %q", s)
	}
}

// Registering reports whether this kind opens a new journal entry
// (Deposit, Withdrawal) as opposed to referencing an existing one (Dispute,
// Resolve, Chargeback).
func (k Kind) Registering() bool {
	return k == Deposit || k == Withdrawal
}

// Record is a single parsed transaction as it arrives at the processor.
// Amount is nil for Dispute, Resolve and Chargeback records.
type Record struct {
	Kind   Kind
	Client ClientID
	Tx     TransactionID
	Amount *Amount
}
