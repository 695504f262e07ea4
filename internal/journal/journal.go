// Package journal implements the bounded transaction journal: an in-memory
// map from transaction id to the entry describing its original kind and
// amount, capped at a fixed capacity via a two-phase eviction policy
// ("rollout"). The eviction shape — keep a secondary ordered structure over
// the live keys so the "drop the oldest/smallest" decision doesn't require
// scanning the whole map — is adapted from the teacher's
// core/txpool.truncatePending/truncateQueue, which solve the same kind of
// "pool is over capacity, evict by priority" problem over pending
// transactions; here the priority is simply ascending transaction id, and
// google/btree (already part of the teacher's dependency graph) stands in
// for its prque-based spam ordering.
package journal

import (
	"errors"

	"github.com/google/btree"

	"github.com/ledgerflow/paymentsengine/types"
)

// Errors returned by Journal operations.
var (
	ErrTransactionAlreadyExists = errors.New("journal: transaction already exists")
	ErrTransactionNotFound      = errors.New("journal: transaction not found")
	ErrInvalidCapacity          = errors.New("journal: max capacity must be greater than zero")
)

// EvictionReason classifies why an entry left the journal during rollout,
// for callers that want to count evictions by cause (internal/metrics).
type EvictionReason int

const (
	EvictedTerminal EvictionReason = iota
	EvictedCapacity
)

// Entry is the stored record for one deposit or withdrawal, advancing
// through the kind lifecycle Deposit|Withdrawal -> Dispute ->
// {Resolve|Chargeback} as dispute records reference it. The amount is
// immutable after insertion; only Kind ever changes.
type Entry struct {
	Kind   types.Kind
	Amount types.Amount
}

// terminal reports whether this entry's current kind can never be
// referenced again by a valid input (Resolve and Chargeback are sinks in
// the transition table).
func (e *Entry) terminal() bool {
	return e.Kind == types.Resolve || e.Kind == types.Chargeback
}

type txID types.TransactionID

func (a txID) Less(than btree.Item) bool { return a < than.(txID) }

// Journal is a bounded map of TransactionID to *Entry. It owns an ordered
// btree index over the same keys purely to answer "smallest live id" in
// O(log n) during rollout; callers never see the index directly, which
// keeps the two structures from drifting apart (every mutation goes
// through insert/evict helpers below).
type Journal struct {
	entries map[types.TransactionID]*Entry
	order   *btree.BTree

	rolloutThreshold int
	maxCapacity      int

	evictions func(types.TransactionID, EvictionReason)
}

// Option configures a Journal at construction.
type Option func(*Journal)

// WithEvictionObserver registers a callback invoked once per evicted
// transaction during rollout, letting the caller feed internal/metrics
// without the journal importing it.
func WithEvictionObserver(fn func(types.TransactionID, EvictionReason)) Option {
	return func(j *Journal) { j.evictions = fn }
}

// New builds an empty Journal. rolloutThreshold is the size at which
// terminal entries are dropped; maxCapacity is the hard cap enforced by
// dropping the smallest live transaction id. maxCapacity must be greater
// than zero.
func New(rolloutThreshold, maxCapacity int, opts ...Option) (*Journal, error) {
	if maxCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	j := &Journal{
		entries:          make(map[types.TransactionID]*Entry),
		order:            btree.New(32),
		rolloutThreshold: rolloutThreshold,
		maxCapacity:      maxCapacity,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Len returns the number of live entries.
func (j *Journal) Len() int {
	return len(j.entries)
}

// Insert adds a new entry for tx, failing with ErrTransactionAlreadyExists
// if tx is already present. Before inserting, it runs rollout so the
// journal never exceeds maxCapacity after this call returns.
func (j *Journal) Insert(tx types.TransactionID, entry Entry) error {
	if _, exists := j.entries[tx]; exists {
		return ErrTransactionAlreadyExists
	}

	j.rollout()

	j.entries[tx] = &entry
	j.order.ReplaceOrInsert(txID(tx))
	return nil
}

// Get returns the entry for tx, or ErrTransactionNotFound if it is absent
// (never inserted, or evicted under memory pressure).
func (j *Journal) Get(tx types.TransactionID) (*Entry, error) {
	entry, ok := j.entries[tx]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return entry, nil
}

// rollout enforces the two-phase eviction policy. First, once size reaches
// rolloutThreshold, every terminal (Resolve/Chargeback) entry is dropped —
// they can never be referenced again by a valid input, so keeping them
// around only wastes capacity. Then, while size is still at or above
// maxCapacity, the smallest live transaction id is evicted repeatedly; this
// is a heuristic for "oldest" in the absence of a wall clock; it is lossy,
// since a disputed transaction older than maxCapacity will surface
// ErrTransactionNotFound, but an unbounded journal is a DoS surface the
// reference design explicitly rejects.
func (j *Journal) rollout() {
	if len(j.entries) >= j.rolloutThreshold {
		var terminal []types.TransactionID
		for tx, entry := range j.entries {
			if entry.terminal() {
				terminal = append(terminal, tx)
			}
		}
		for _, tx := range terminal {
			j.evict(tx, EvictedTerminal)
		}
	}

	for len(j.entries) >= j.maxCapacity {
		item := j.order.Min()
		if item == nil {
			break
		}
		j.evict(types.TransactionID(item.(txID)), EvictedCapacity)
	}
}

func (j *Journal) evict(tx types.TransactionID, reason EvictionReason) {
	delete(j.entries, tx)
	j.order.Delete(txID(tx))
	if j.evictions != nil {
		j.evictions(tx, reason)
	}
}
