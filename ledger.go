package tracker

import (
	"fmt"
	"iter"
	"sort"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// Ledger is the in-memory collection of transactions forming the single
// source of truth. Everything else, inventory, daily summary, holdings, is
// derived from it and can be rebuilt at any time.
type Ledger struct {
	transactions []Transaction
	byID         map[string]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]int)}
}

// Len returns the number of transactions recorded.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append appends transactions to the ledger and maintains the chronological
// order. It fails if a transaction id is already in use.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if _, exists := l.byID[tx.Ident()]; exists {
			return fmt.Errorf("transaction id %q already exists", tx.Ident())
		}
		l.transactions = append(l.transactions, tx)
		l.byID[tx.Ident()] = len(l.transactions) - 1
	}
	l.stableSort()
	return nil
}

// Remove deletes the transaction with the given id and returns it.
func (l *Ledger) Remove(id string) (Transaction, error) {
	i, exists := l.byID[id]
	if !exists {
		return nil, fmt.Errorf("transaction id %q not found", id)
	}
	tx := l.transactions[i]
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	l.reindex()
	return tx, nil
}

// Replace swaps the transaction holding tx's id with tx and returns the
// previous version.
func (l *Ledger) Replace(tx Transaction) (Transaction, error) {
	i, exists := l.byID[tx.Ident()]
	if !exists {
		return nil, fmt.Errorf("transaction id %q not found", tx.Ident())
	}
	old := l.transactions[i]
	l.transactions[i] = tx
	l.stableSort()
	return old, nil
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	i, exists := l.byID[id]
	if !exists {
		return nil, false
	}
	return l.transactions[i], true
}

// Transactions returns an iterator over all transactions in chronological
// order. Transactions on the same day keep their insertion order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Snapshot returns a shallow copy of the ledger. Transactions are immutable
// values, so sharing them is safe.
func (l *Ledger) Snapshot() *Ledger {
	c := NewLedger()
	c.transactions = append(c.transactions, l.transactions...)
	for id, i := range l.byID {
		c.byID[id] = i
	}
	return c
}

// OldestTransactionDate returns the date of the earliest transaction, or the
// zero date on an empty ledger.
func (l *Ledger) OldestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[0].When()
}

// NewestTransactionDate returns the date of the latest transaction, or the
// zero date on an empty ledger.
func (l *Ledger) NewestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[len(l.transactions)-1].When()
}

// Products returns the set of product keys ever referenced by the ledger.
func (l *Ledger) Products() map[ProductKey]struct{} {
	keys := make(map[ProductKey]struct{})
	for _, tx := range l.transactions {
		for _, d := range tx.QuantityDeltas() {
			keys[d.Key] = struct{}{}
		}
	}
	return keys
}

// stableSort sorts the ledger by received date. The sort is stable, so
// transactions on the same day maintain their relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
	l.reindex()
}

func (l *Ledger) reindex() {
	l.byID = make(map[string]int, len(l.transactions))
	for i, tx := range l.transactions {
		l.byID[tx.Ident()] = i
	}
}
