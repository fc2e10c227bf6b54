package tracker

import (
	"github.com/gauravagarwal003/tcg-tracker/date"
)

// Inventory is the per-product quantity timeline derived from a ledger. Each
// history holds cumulative quantities at the sparse dates on which they
// changed; the quantity on any other day is the value as of the most recent
// change.
type Inventory map[ProductKey]*date.History[Quantity]

// ComputeInventory folds every transaction's signed quantity deltas into
// cumulative per-product timelines.
func ComputeInventory(ledger *Ledger) Inventory {
	// accumulate raw deltas per product and date first, several
	// transactions can touch the same product on the same day.
	deltas := make(map[ProductKey]map[date.Date]Quantity)
	for tx := range ledger.Transactions() {
		on := tx.When()
		for _, d := range tx.QuantityDeltas() {
			byDay := deltas[d.Key]
			if byDay == nil {
				byDay = make(map[date.Date]Quantity)
				deltas[d.Key] = byDay
			}
			byDay[on] = byDay[on].Add(d.Quantity)
		}
	}

	inv := make(Inventory, len(deltas))
	for key, byDay := range deltas {
		h := &date.History[Quantity]{}
		for on, q := range byDay {
			h.Append(on, q)
		}
		// histories are sorted by Append, turn deltas into running totals.
		var total Quantity
		rebuilt := &date.History[Quantity]{}
		for on, q := range h.Values() {
			total = total.Add(q)
			rebuilt.Append(on, total)
		}
		inv[key] = rebuilt
	}
	return inv
}

// QuantityOn returns the quantity of a product held on a given day.
func (inv Inventory) QuantityOn(key ProductKey, on date.Date) Quantity {
	h, exists := inv[key]
	if !exists {
		return Quantity{}
	}
	q, _ := h.ValueAsOf(on)
	return q
}

// Validate checks that no product quantity ever goes negative. A negative
// quantity means the ledger removes more items than it ever added, which is
// a recording error, not a state the tracker can value.
func (inv Inventory) Validate() error {
	for key, h := range inv {
		for on, q := range h.Values() {
			if q.IsNegative() {
				return &ValidationError{Key: key, On: on, Quantity: q}
			}
		}
	}
	return nil
}

// OwnedRange returns the span of days during which the product was held, from
// its first positive quantity to the last day it was still owned. The second
// return is false when the product was never held.
//
// Products sold down to zero stop at the date the quantity reached zero;
// products still held extend to the given horizon.
func (inv Inventory) OwnedRange(key ProductKey, horizon date.Date) (date.Range, bool) {
	h, exists := inv[key]
	if !exists || h.Len() == 0 {
		return date.Range{}, false
	}
	var from, to date.Date
	var owned bool
	for on, q := range h.Values() {
		if q.IsPositive() {
			if !owned {
				from = on
				owned = true
			}
			to = horizon
		} else if owned && to == horizon {
			to = on
		}
	}
	if !owned {
		return date.Range{}, false
	}
	return date.NewRange(from, to), true
}
