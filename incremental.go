package tracker

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// IncrementalUpdater adjusts an existing daily summary for a set of added
// and removed transactions without re-deriving unaffected days. It is a
// shortcut over the ValuationEngine, never a replacement: whenever a
// precondition fails it reports a rebuild reason instead of guessing.
type IncrementalUpdater struct {
	prices *PriceStore
	log    zerolog.Logger
}

// NewIncrementalUpdater returns an updater reading prices from the store.
func NewIncrementalUpdater(prices *PriceStore, log zerolog.Logger) *IncrementalUpdater {
	return &IncrementalUpdater{
		prices: prices,
		log:    log.With().Str("component", "incremental").Logger(),
	}
}

// UpdateOutcome is the result of an incremental attempt. When RebuildReason
// is non-empty the Summary is nil and the caller must fall back to a full
// derivation.
type UpdateOutcome struct {
	Summary       *DailySummary
	RebuildReason string
}

// Apply adjusts existing for the changes in cs, validating the resulting
// ledger first. A ValidationError rejects the change outright: the caller
// must not persist the mutated ledger. Any other shortfall, a change before
// the summary starts, a product with no price data, comes back as a
// RebuildReason with a nil summary.
//
// Removals are applied before additions, so an edit that swaps one
// transaction for another restores the old quantities before the new ones
// land.
func (u *IncrementalUpdater) Apply(existing *DailySummary, resulting *Ledger, cs *ChangeSet) (UpdateOutcome, error) {
	if cs == nil {
		return UpdateOutcome{Summary: existing}, nil
	}
	if err := ComputeInventory(resulting).Validate(); err != nil {
		return UpdateOutcome{}, err
	}
	if existing.Len() == 0 {
		return UpdateOutcome{RebuildReason: "no existing summary to update"}, nil
	}
	first, _ := existing.First()
	if cs.ResumeDate.Before(first) {
		return UpdateOutcome{RebuildReason: fmt.Sprintf("change on %s predates summary start %s", cs.ResumeDate, first)}, nil
	}

	adjusted := existing.Clone()
	last, _ := adjusted.Latest()
	series := make(map[ProductKey]*date.History[Money])

	apply := func(tx Transaction, sign int) (rebuild string, err error) {
		from := date.Max(tx.When(), first)
		if from.After(last) {
			// a change past the summary's last day touches no existing
			// entry; the caller derives the tail separately.
			return "", nil
		}
		span := date.NewRange(from, last)

		basis := tx.BasisDelta()
		if sign < 0 {
			basis = basis.Neg()
		}
		for day := range span.Days() {
			entry, exists := adjusted.Get(day)
			if !exists {
				return "", &DateContinuityError{Missing: []date.Date{day}}
			}
			entry.CostBasis = entry.CostBasis.Add(basis)

			for _, d := range tx.QuantityDeltas() {
				q := d.Quantity
				if sign < 0 {
					q = q.Neg()
				}
				h, loaded := series[d.Key]
				if !loaded {
					h, err = u.prices.Load(d.Key)
					if err != nil {
						return "", err
					}
					series[d.Key] = h
				}
				price, known := priceOn(h, day)
				if !known {
					return fmt.Sprintf("no price data for %s", d.Key), nil
				}
				entry.TotalValue = entry.TotalValue.Add(price.Mul(q))
				entry.ItemsOwned = entry.ItemsOwned.Add(q)
			}
			adjusted.Append(day, entry)
		}
		return "", nil
	}

	for _, tx := range cs.Removed {
		if reason, err := apply(tx, -1); err != nil || reason != "" {
			return UpdateOutcome{RebuildReason: reason}, err
		}
	}
	for _, tx := range cs.Added {
		if reason, err := apply(tx, +1); err != nil || reason != "" {
			return UpdateOutcome{RebuildReason: reason}, err
		}
	}

	// the shortcut must preserve the fail-closed invariant of a full
	// derivation: a day holding items with no value means missing prices.
	if !cs.ResumeDate.After(last) {
		for day := range date.NewRange(cs.ResumeDate, last).Days() {
			entry, _ := adjusted.Get(day)
			if entry.TotalValue.IsZero() && entry.ItemsOwned.IsPositive() {
				return UpdateOutcome{}, &DataIntegrityError{On: day}
			}
		}
	}

	u.log.Debug().Stringer("resume", cs.ResumeDate).
		Int("added", len(cs.Added)).Int("removed", len(cs.Removed)).
		Msg("summary adjusted incrementally")
	return UpdateOutcome{Summary: adjusted}, nil
}
