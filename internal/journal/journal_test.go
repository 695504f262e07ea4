package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerflow/paymentsengine/internal/journal"
	"github.com/ledgerflow/paymentsengine/types"
)

func one(t *testing.T) types.Amount {
	t.Helper()
	a, err := types.ParseAmount("1")
	require.NoError(t, err)
	return a
}

func TestInsertAndGet(t *testing.T) {
	j, err := journal.New(1000, 1000000)
	require.NoError(t, err)

	require.NoError(t, j.Insert(1, journal.Entry{Kind: types.Deposit, Amount: one(t)}))

	entry, err := j.Get(1)
	require.NoError(t, err)
	assert.Equal(t, types.Deposit, entry.Kind)
}

func TestInsertDuplicateFails(t *testing.T) {
	j, err := journal.New(1000, 1000000)
	require.NoError(t, err)

	require.NoError(t, j.Insert(1, journal.Entry{Kind: types.Deposit, Amount: one(t)}))
	err = j.Insert(1, journal.Entry{Kind: types.Withdrawal, Amount: one(t)})
	assert.ErrorIs(t, err, journal.ErrTransactionAlreadyExists)
}

func TestGetMissingFails(t *testing.T) {
	j, err := journal.New(1000, 1000000)
	require.NoError(t, err)

	_, err = j.Get(999)
	assert.ErrorIs(t, err, journal.ErrTransactionNotFound)
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	_, err := journal.New(1000, 0)
	assert.ErrorIs(t, err, journal.ErrInvalidCapacity)
}

func TestRolloutDropsTerminalAtThreshold(t *testing.T) {
	j, err := journal.New(3, 1000000)
	require.NoError(t, err)

	require.NoError(t, j.Insert(1, journal.Entry{Kind: types.Resolve, Amount: one(t)}))
	require.NoError(t, j.Insert(2, journal.Entry{Kind: types.Chargeback, Amount: one(t)}))
	require.NoError(t, j.Insert(3, journal.Entry{Kind: types.Dispute, Amount: one(t)}))

	// Fourth insertion crosses the rollout threshold (size>=3), so the
	// terminal entries (tx 1, tx 2) are swept before this insert lands.
	require.NoError(t, j.Insert(4, journal.Entry{Kind: types.Deposit, Amount: one(t)}))

	_, err = j.Get(1)
	assert.ErrorIs(t, err, journal.ErrTransactionNotFound)
	_, err = j.Get(2)
	assert.ErrorIs(t, err, journal.ErrTransactionNotFound)

	_, err = j.Get(3)
	assert.NoError(t, err, "non-terminal entry survives the terminal sweep")
	_, err = j.Get(4)
	assert.NoError(t, err)
}

func TestRolloutEvictsSmallestAtCapacity(t *testing.T) {
	j, err := journal.New(1000, 2)
	require.NoError(t, err)

	require.NoError(t, j.Insert(5, journal.Entry{Kind: types.Withdrawal, Amount: one(t)}))
	require.NoError(t, j.Insert(3, journal.Entry{Kind: types.Withdrawal, Amount: one(t)}))

	// Now at capacity (2): the next insert must evict the smallest id (3)
	// before landing.
	require.NoError(t, j.Insert(7, journal.Entry{Kind: types.Withdrawal, Amount: one(t)}))

	_, err = j.Get(3)
	assert.ErrorIs(t, err, journal.ErrTransactionNotFound)

	_, err = j.Get(5)
	assert.NoError(t, err)
	_, err = j.Get(7)
	assert.NoError(t, err)
}

func TestBoundaryAtExactlyMaxCapacityMinusOne(t *testing.T) {
	j, err := journal.New(1000, 3)
	require.NoError(t, err)

	require.NoError(t, j.Insert(1, journal.Entry{Kind: types.Deposit, Amount: one(t)}))
	require.NoError(t, j.Insert(2, journal.Entry{Kind: types.Deposit, Amount: one(t)}))
	assert.Equal(t, 2, j.Len(), "max_capacity-1 entries accepted without eviction")

	// This insertion brings the journal to exactly max_capacity; the
	// reference design accepts it without eviction.
	require.NoError(t, j.Insert(3, journal.Entry{Kind: types.Deposit, Amount: one(t)}))
	assert.Equal(t, 3, j.Len())

	// The journal is now at max_capacity; the next insertion evicts the
	// smallest live id (1) before landing.
	require.NoError(t, j.Insert(4, journal.Entry{Kind: types.Deposit, Amount: one(t)}))
	assert.Equal(t, 3, j.Len())

	_, err = j.Get(1)
	assert.ErrorIs(t, err, journal.ErrTransactionNotFound)
	_, err = j.Get(2)
	assert.NoError(t, err)
	_, err = j.Get(3)
	assert.NoError(t, err)
	_, err = j.Get(4)
	assert.NoError(t, err)
}

func TestEvictionObserverReportsReasons(t *testing.T) {
	type event struct {
		tx     types.TransactionID
		reason journal.EvictionReason
	}
	var events []event

	j, err := journal.New(1, 1000000, journal.WithEvictionObserver(func(tx types.TransactionID, reason journal.EvictionReason) {
		events = append(events, event{tx, reason})
	}))
	require.NoError(t, err)

	require.NoError(t, j.Insert(1, journal.Entry{Kind: types.Chargeback, Amount: one(t)}))
	require.NoError(t, j.Insert(2, journal.Entry{Kind: types.Deposit, Amount: one(t)}))

	require.Len(t, events, 1)
	assert.Equal(t, types.TransactionID(1), events[0].tx)
	assert.Equal(t, journal.EvictedTerminal, events[0].reason)
}
