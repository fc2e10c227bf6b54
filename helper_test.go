package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// day is shorthand for a date in the test month.
func day(d int) date.Date { return date.New(2024, time.June, d) }

var testKey = NewProductKey("3", "2377", "21")
var otherKey = NewProductKey("3", "2377", "42")

func item(key ProductKey, qty int) Item {
	return Item{Key: key, Quantity: Q(qty)}
}

var txnSeq int

// txnID returns a deterministic unique id for test transactions.
func txnID() string {
	txnSeq++
	return fmt.Sprintf("01TEST%020d", txnSeq)
}

func buy(on date.Date, amount float64, items ...Item) Simple {
	return NewBuy(txnID(), on, date.Date{}, "", items, M(amount))
}

func sell(on date.Date, amount float64, items ...Item) Simple {
	return NewSell(txnID(), on, date.Date{}, "", items, M(amount))
}

func open(on date.Date, items ...Item) Simple {
	return NewOpen(txnID(), on, "", items)
}

func trade(on date.Date, out, in []Item, basisOut, basisIn float64) Trade {
	return NewTrade(txnID(), on, date.Date{}, "", out, in, M(basisOut), M(basisIn))
}

func newLedger(t *testing.T, txs ...Transaction) *Ledger {
	t.Helper()
	l := NewLedger()
	require.NoError(t, l.Append(txs...))
	return l
}

// newPriceStore returns a store over a temp dir seeded with the given
// prices, as float amounts keyed by day number.
func newPriceStore(t *testing.T, prices map[ProductKey]map[int]float64) *PriceStore {
	t.Helper()
	store := NewPriceStore(t.TempDir(), zerolog.Nop())
	for key, byDay := range prices {
		merged := make(map[date.Date]Money, len(byDay))
		for d, p := range byDay {
			merged[day(d)] = M(p)
		}
		require.NoError(t, store.Merge(key, merged))
	}
	return store
}

func entry(value, basis float64, items int) SummaryEntry {
	return SummaryEntry{TotalValue: M(value), CostBasis: M(basis), ItemsOwned: Q(items)}
}

// requireEntry asserts a summary day matches the expected entry exactly.
func requireEntry(t *testing.T, s *DailySummary, on date.Date, want SummaryEntry) {
	t.Helper()
	got, exists := s.Get(on)
	require.True(t, exists, "no entry for %s", on)
	require.True(t, got.TotalValue.Equal(want.TotalValue), "%s total value = %s, want %s", on, got.TotalValue, want.TotalValue)
	require.True(t, got.CostBasis.Equal(want.CostBasis), "%s cost basis = %s, want %s", on, got.CostBasis, want.CostBasis)
	require.True(t, got.ItemsOwned.Equal(want.ItemsOwned), "%s items = %s, want %s", on, got.ItemsOwned, want.ItemsOwned)
}

// requireSameSummary asserts two summaries are identical day by day.
func requireSameSummary(t *testing.T, got, want *DailySummary) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len(), "day counts differ")
	for on, e := range want.Days().Values() {
		requireEntry(t, got, on, e)
	}
}
