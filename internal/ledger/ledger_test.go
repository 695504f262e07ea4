package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerflow/paymentsengine/internal/ledger"
	"github.com/ledgerflow/paymentsengine/types"
)

func amt(t *testing.T, s string) types.Amount {
	t.Helper()
	a, err := types.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestCreditDebit(t *testing.T) {
	s := &ledger.Status{}

	require.NoError(t, s.Credit(amt(t, "5.1")))
	require.NoError(t, s.Credit(amt(t, "0.2")))
	require.NoError(t, s.Debit(amt(t, "4.2")))

	assert.Equal(t, "1.1", s.Available.String())
	total, err := s.Total()
	require.NoError(t, err)
	assert.Equal(t, "1.1", total.String())
}

func TestDebitInsufficientFunds(t *testing.T) {
	s := &ledger.Status{}
	require.NoError(t, s.Credit(amt(t, "1")))

	err := s.Debit(amt(t, "1.0001"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, "1", s.Available.String(), "failed debit must not mutate balance")
}

func TestCreditOverflow(t *testing.T) {
	s := &ledger.Status{Available: types.MaxAmount()}
	err := s.Credit(amt(t, "0.0001"))
	assert.ErrorIs(t, err, ledger.ErrWouldOverflow)
	assert.Equal(t, types.MaxAmount(), s.Available)
}

func TestHoldReleaseRoundTrip(t *testing.T) {
	s := &ledger.Status{}
	require.NoError(t, s.Credit(amt(t, "5")))
	require.NoError(t, s.Debit(amt(t, "2")))

	before := *s

	require.NoError(t, s.Hold(amt(t, "2")))
	assert.Equal(t, "3", s.Available.String())
	assert.Equal(t, "2", s.Held.String())

	require.NoError(t, s.Release(amt(t, "2")))
	assert.Equal(t, before.Available, s.Available)
	assert.Equal(t, before.Held, s.Held)
}

func TestLockIsTerminal(t *testing.T) {
	s := &ledger.Status{}
	require.NoError(t, s.Credit(amt(t, "5")))
	require.NoError(t, s.Debit(amt(t, "2")))
	require.NoError(t, s.Hold(amt(t, "2")))

	require.NoError(t, s.Lock(amt(t, "2")))
	assert.True(t, s.Locked)
	assert.Equal(t, "3", s.Available.String())
	assert.True(t, s.Held.IsZero())
}

func TestReleaseWithoutHoldFails(t *testing.T) {
	s := &ledger.Status{}
	err := s.Release(amt(t, "1"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
}

func TestBookGetOrCreate(t *testing.T) {
	b := ledger.Book{}

	first := b.GetOrCreate(types.ClientID(1))
	assert.NotNil(t, first)
	assert.False(t, first.Locked)

	first.Locked = true

	second := b.GetOrCreate(types.ClientID(1))
	assert.Same(t, first, second, "same client must return the same account")
}
