// Package ledger holds per-client account state and its mutators. The
// mutators are pointer-receiver methods returning a sentinel error rather
// than panicking, so the processor can convert a precondition failure into
// its own error taxonomy without recovering from a panic — the same guard-
// before-mutate shape as the teacher's core/txpool balance checks (checked
// with errors.Is against a package-level sentinel, never inferred from a
// panic).
package ledger

import (
	"errors"

	"github.com/ledgerflow/paymentsengine/types"
)

// Sentinel errors returned by Status's mutators. The processor (internal/
// engine) maps these onto its own error taxonomy; nothing outside this
// package should need to match on them directly, but they are exported so
// tests can assert on cause with errors.Is.
var (
	ErrInsufficientFunds = errors.New("ledger: insufficient available funds")
	ErrWouldOverflow     = errors.New("ledger: balance would exceed maximum")
)

// Status is a client's account: available funds, held funds, and whether
// the account has been locked by a chargeback. Total is derived, never
// stored. The zero value is a fresh, unlocked, zero-balance account —
// exactly the state a client starts in on first mention (spec: "created on
// first mention of a client").
type Status struct {
	Available types.Amount
	Held      types.Amount
	Locked    bool
}

// Total returns Available + Held. It can only fail if the two have
// diverged from the invariant that their sum never exceeds Amount's
// maximum, which every mutator below is built to prevent; callers that hit
// the error have found a bug in this package.
func (s *Status) Total() (types.Amount, error) {
	return s.Available.Add(s.Held)
}

// Credit adds amount to Available. It fails with ErrWouldOverflow if doing
// so would exceed the representable maximum.
func (s *Status) Credit(amount types.Amount) error {
	sum, err := s.Available.Add(amount)
	if err != nil {
		return ErrWouldOverflow
	}
	s.Available = sum
	return nil
}

// Debit subtracts amount from Available. It fails with
// ErrInsufficientFunds if amount exceeds Available.
func (s *Status) Debit(amount types.Amount) error {
	diff, err := s.Available.Sub(amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	s.Available = diff
	return nil
}

// Hold moves amount into Held without touching Available. A disputed
// withdrawal's funds are already gone from Available, so disputing it
// reserves an equivalent hold rather than re-debiting Available. Hold only
// fails if Held would overflow: the processor only calls it with the
// amount of an entry it already validated.
func (s *Status) Hold(amount types.Amount) error {
	sum, err := s.Held.Add(amount)
	if err != nil {
		return ErrWouldOverflow
	}
	s.Held = sum
	return nil
}

// Release moves amount from Held to Available. Hold did not touch
// Available, so a Hold followed by a Release of the same amount leaves Held
// where it started and raises Available by that amount.
func (s *Status) Release(amount types.Amount) error {
	held, err := s.Held.Sub(amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	avail, err := s.Available.Add(amount)
	if err != nil {
		return ErrWouldOverflow
	}
	s.Held = held
	s.Available = avail
	return nil
}

// Lock removes amount from Held permanently and marks the account locked.
// Locked is monotonic: once true it is never reset, enforced by the
// processor never calling any mutator again once it observes Locked (see
// internal/engine).
func (s *Status) Lock(amount types.Amount) error {
	held, err := s.Held.Sub(amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	s.Held = held
	s.Locked = true
	return nil
}

// Book is the set of known accounts, keyed by client. It is owned
// exclusively by the processor (internal/engine); nothing else mutates it.
type Book map[types.ClientID]*Status

// GetOrCreate returns the account for client, creating a fresh zeroed,
// unlocked one on first mention.
func (b Book) GetOrCreate(client types.ClientID) *Status {
	status, ok := b[client]
	if !ok {
		status = &Status{}
		b[client] = status
	}
	return status
}
