package tracker

import (
	"github.com/rs/zerolog"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// ValuationEngine derives the daily summary from a ledger and the stored
// price series. It never mutates either input: the summary is a pure
// function of ledger and prices and can always be rebuilt from scratch.
type ValuationEngine struct {
	prices *PriceStore
	log    zerolog.Logger
	today  func() date.Date
}

// NewValuationEngine returns an engine reading prices from the given store.
func NewValuationEngine(prices *PriceStore, log zerolog.Logger) *ValuationEngine {
	return &ValuationEngine{
		prices: prices,
		log:    log.With().Str("component", "valuation").Logger(),
		today:  date.Today,
	}
}

// priceOn resolves the price of a product on a day: the recorded price if
// there is one, otherwise the most recent earlier price carried forward,
// otherwise the first known price carried backward. The second return is
// false only when nothing is known about the product at all.
func priceOn(series *date.History[Money], on date.Date) (Money, bool) {
	if series == nil || series.Len() == 0 {
		return Money{}, false
	}
	if price, known := series.ValueAsOf(on); known {
		return price, true
	}
	_, first := series.First()
	return first, true
}

// Derive computes the summary for every day from the oldest transaction up
// to and including until. Days where items are held but no price at all
// produced a value fail closed: the summary derived so far is returned
// together with a DataIntegrityError, so a half-empty archive is never
// mistaken for a worthless collection.
func (e *ValuationEngine) Derive(ledger *Ledger, until date.Date) (*DailySummary, error) {
	summary := NewDailySummary()
	if ledger.Len() == 0 {
		return summary, nil
	}
	if until.IsZero() {
		until = e.today()
	}

	inventory := ComputeInventory(ledger)
	if err := inventory.Validate(); err != nil {
		return summary, err
	}

	// cost basis and item deltas per day, folded once up front.
	basisByDay := make(map[date.Date]Money)
	for tx := range ledger.Transactions() {
		on := tx.When()
		basisByDay[on] = basisByDay[on].Add(tx.BasisDelta())
	}

	series := make(map[ProductKey]*date.History[Money], len(inventory))
	for key := range inventory {
		h, err := e.prices.Load(key)
		if err != nil {
			return summary, err
		}
		series[key] = h
	}

	span := date.NewRange(ledger.OldestTransactionDate(), until)
	e.log.Debug().Stringer("from", span.From).Stringer("to", span.To).Msg("deriving daily summary")

	var basis Money
	for day := range span.Days() {
		basis = basis.Add(basisByDay[day])

		var value Money
		var owned Quantity
		for key, h := range inventory {
			q, _ := h.ValueAsOf(day)
			if !q.IsPositive() {
				continue
			}
			owned = owned.Add(q)
			if price, known := priceOn(series[key], day); known {
				value = value.Add(price.Mul(q))
			}
		}

		if value.IsZero() && owned.IsPositive() {
			e.log.Error().Stringer("day", day).Stringer("owned", owned).Msg("no price produced a value")
			return summary, &DataIntegrityError{On: day}
		}
		summary.Append(day, SummaryEntry{TotalValue: value, CostBasis: basis, ItemsOwned: owned})
	}
	return summary, nil
}
