package tracker

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, prices map[ProductKey]map[int]float64) *ValuationEngine {
	t.Helper()
	return NewValuationEngine(newPriceStore(t, prices), zerolog.Nop())
}

func TestDeriveCarriesPricesForward(t *testing.T) {
	// 10 items bought for $50; price known on day 1 and day 3 only.
	engine := newEngine(t, map[ProductKey]map[int]float64{
		testKey: {1: 5, 3: 6},
	})
	l := newLedger(t, buy(day(1), 50, item(testKey, 10)))

	summary, err := engine.Derive(l, day(3))
	require.NoError(t, err)
	require.Equal(t, 3, summary.Len())

	requireEntry(t, summary, day(1), entry(50, 50, 10))
	requireEntry(t, summary, day(2), entry(50, 50, 10)) // carried $5
	requireEntry(t, summary, day(3), entry(60, 50, 10))
	require.NoError(t, summary.Validate())
}

func TestDeriveSellToZeroIsNotAnError(t *testing.T) {
	engine := newEngine(t, map[ProductKey]map[int]float64{
		testKey: {1: 2},
	})
	l := newLedger(t,
		buy(day(1), 10, item(testKey, 5)),
		sell(day(2), 15, item(testKey, 5)),
	)

	summary, err := engine.Derive(l, day(3))
	require.NoError(t, err)

	requireEntry(t, summary, day(1), entry(10, 10, 5))
	// everything sold: zero value with zero items is legitimate, and the
	// basis goes negative because more came out than went in.
	requireEntry(t, summary, day(2), entry(0, -5, 0))
	requireEntry(t, summary, day(3), entry(0, -5, 0))
}

func TestDeriveTradeShiftsBasis(t *testing.T) {
	engine := newEngine(t, map[ProductKey]map[int]float64{
		testKey:  {1: 5},
		otherKey: {2: 20},
	})
	l := newLedger(t,
		buy(day(1), 10, item(testKey, 2)),
		trade(day(2), []Item{item(testKey, 1)}, []Item{item(otherKey, 1)}, 10, 15),
	)

	summary, err := engine.Derive(l, day(2))
	require.NoError(t, err)

	requireEntry(t, summary, day(1), entry(10, 10, 2))
	// day 2: one testKey left at carried $5, one otherKey at $20; basis
	// moves by the declared difference 15 - 10.
	requireEntry(t, summary, day(2), entry(25, 15, 2))
}

func TestDeriveFailsClosedOnMissingPrices(t *testing.T) {
	engine := newEngine(t, nil)
	l := newLedger(t, buy(day(1), 50, item(testKey, 10)))

	summary, err := engine.Derive(l, day(3))
	require.Error(t, err)

	var derr *DataIntegrityError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, day(1), derr.On)
	// nothing derived before the failing day.
	assert.Equal(t, 0, summary.Len())
}

func TestDeriveBackfillsBeforeFirstPrice(t *testing.T) {
	// bought before price coverage began: the first known price reaches back.
	engine := newEngine(t, map[ProductKey]map[int]float64{
		testKey: {3: 4},
	})
	l := newLedger(t, buy(day(1), 8, item(testKey, 2)))

	summary, err := engine.Derive(l, day(3))
	require.NoError(t, err)
	requireEntry(t, summary, day(1), entry(8, 8, 2))
	requireEntry(t, summary, day(3), entry(8, 8, 2))
}

func TestDeriveRejectsNegativeInventory(t *testing.T) {
	engine := newEngine(t, map[ProductKey]map[int]float64{testKey: {1: 5}})
	l := newLedger(t, sell(day(1), 5, item(testKey, 1)))

	_, err := engine.Derive(l, day(1))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeriveEmptyLedger(t *testing.T) {
	engine := newEngine(t, nil)
	summary, err := engine.Derive(NewLedger(), day(5))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Len())
}

func TestDeriveIsIdempotent(t *testing.T) {
	engine := newEngine(t, map[ProductKey]map[int]float64{testKey: {1: 5}})
	l := newLedger(t, buy(day(1), 50, item(testKey, 10)))

	first, err := engine.Derive(l, day(4))
	require.NoError(t, err)
	second, err := engine.Derive(l, day(4))
	require.NoError(t, err)
	requireSameSummary(t, second, first)
}
