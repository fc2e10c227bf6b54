package tracker

import (
	"sort"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// Holding is one currently owned product with its latest known price.
type Holding struct {
	Key       ProductKey
	Name      string
	Quantity  Quantity
	Price     Money     // latest price within the lookback window, zero if none
	PriceDate date.Date // day the price was recorded, zero if none
	Value     Money
}

// Holdings returns everything held on a given day, valued at the most recent
// price no older than lookback days. Products whose last price is older show
// a zero price rather than a stale one, so the staleness is visible.
// The result is sorted by value, largest first.
func Holdings(ledger *Ledger, prices *PriceStore, catalog Catalog, on date.Date, lookback int) ([]Holding, error) {
	inventory := ComputeInventory(ledger)

	var holdings []Holding
	for key, h := range inventory {
		q, _ := h.ValueAsOf(on)
		if !q.IsPositive() {
			continue
		}
		holding := Holding{Key: key, Name: catalog.Name(key), Quantity: q}

		series, err := prices.Load(key)
		if err != nil {
			return nil, err
		}
		// scan back through the lookback window for the newest recorded price.
		for day := on; !day.Before(on.Add(-lookback)); day = day.Add(-1) {
			if p, exact := series.Get(day); exact {
				holding.Price = p
				holding.PriceDate = day
				holding.Value = p.Mul(q)
				break
			}
		}
		holdings = append(holdings, holding)
	}

	sort.Slice(holdings, func(i, j int) bool {
		if !holdings[i].Value.Equal(holdings[j].Value) {
			return holdings[j].Value.LessThan(holdings[i].Value)
		}
		return holdings[i].Key.Compare(holdings[j].Key) < 0
	})
	return holdings, nil
}
