package tracker

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// incrementalFixture derives a baseline summary and returns everything
// needed to compare the incremental path against a full derivation.
type incrementalFixture struct {
	store   *PriceStore
	engine  *ValuationEngine
	updater *IncrementalUpdater
}

func newFixture(t *testing.T, prices map[ProductKey]map[int]float64) *incrementalFixture {
	t.Helper()
	store := newPriceStore(t, prices)
	return &incrementalFixture{
		store:   store,
		engine:  NewValuationEngine(store, zerolog.Nop()),
		updater: NewIncrementalUpdater(store, zerolog.Nop()),
	}
}

// apply runs the incremental path for the transition old -> updated and
// requires it to succeed without a rebuild.
func (fx *incrementalFixture) apply(t *testing.T, old, updated *Ledger, until int) *DailySummary {
	t.Helper()
	existing, err := fx.engine.Derive(old, day(until))
	require.NoError(t, err)

	cs := DetectChanges(old, updated)
	require.NotNil(t, cs)
	outcome, err := fx.updater.Apply(existing, updated, cs)
	require.NoError(t, err)
	require.Empty(t, outcome.RebuildReason)
	return outcome.Summary
}

func TestIncrementalMatchesFullRebuildOnAdd(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5, 3: 6},
	})
	base := buy(day(1), 50, item(testKey, 10))
	added := sell(day(3), 18, item(testKey, 3))
	old := newLedger(t, base)
	updated := newLedger(t, base, added)

	got := fx.apply(t, old, updated, 5)
	want, err := fx.engine.Derive(updated, day(5))
	require.NoError(t, err)
	requireSameSummary(t, got, want)

	// spot check: the sale only changes days from its date onward.
	requireEntry(t, got, day(2), entry(50, 50, 10))
	requireEntry(t, got, day(3), entry(42, 32, 7))
}

func TestIncrementalMatchesFullRebuildOnRemove(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5},
	})
	base := buy(day(1), 50, item(testKey, 10))
	gone := sell(day(3), 18, item(testKey, 3))
	old := newLedger(t, base, gone)
	updated := newLedger(t, base)

	got := fx.apply(t, old, updated, 5)
	want, err := fx.engine.Derive(updated, day(5))
	require.NoError(t, err)
	requireSameSummary(t, got, want)

	// removing the sale restores its quantity at each later day's price.
	requireEntry(t, got, day(4), entry(50, 50, 10))
}

func TestIncrementalMatchesFullRebuildOnEdit(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5},
	})
	base := buy(day(1), 50, item(testKey, 10))
	before := sell(day(3), 18, item(testKey, 3))
	after := before
	after.Amount = M(21)
	old := newLedger(t, base, before)
	updated := newLedger(t, base, after)

	got := fx.apply(t, old, updated, 5)
	want, err := fx.engine.Derive(updated, day(5))
	require.NoError(t, err)
	requireSameSummary(t, got, want)
}

func TestIncrementalIgnoresTransactionPastSummaryEnd(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5},
	})
	old := newLedger(t, buy(day(1), 50, item(testKey, 10)))
	updated := old.Snapshot()
	require.NoError(t, updated.Append(sell(day(5), 20, item(testKey, 4))))

	// the summary on disk ends at day 3; a sale on day 5 touches no
	// existing entry and must leave the patch untouched.
	existing, err := fx.engine.Derive(old, day(3))
	require.NoError(t, err)
	cs := DetectChanges(old, updated)
	require.NotNil(t, cs)

	outcome, err := fx.updater.Apply(existing, updated, cs)
	require.NoError(t, err)
	require.Empty(t, outcome.RebuildReason)

	want, err := fx.engine.Derive(old, day(3))
	require.NoError(t, err)
	requireSameSummary(t, outcome.Summary, want)
}

func TestIncrementalKeepsExactAmounts(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5.99, 2: 5.99},
	})
	half := []Item{{Key: testKey, Quantity: Q(0.5)}}
	old := newLedger(t, NewBuy(txnID(), day(1), date.Date{}, "", half, M(3)))
	updated := old.Snapshot()
	require.NoError(t, updated.Append(NewBuy(txnID(), day(2), date.Date{}, "", half, M(3))))

	// half a unit at 5.99 is 2.995; stacking deltas on a cent-rounded
	// entry would drift to 6.00 where a full derivation yields 5.99.
	got := fx.apply(t, old, updated, 2)
	want, err := fx.engine.Derive(updated, day(2))
	require.NoError(t, err)
	requireSameSummary(t, got, want)
	requireEntry(t, got, day(2), entry(5.99, 6, 1))
}

func TestIncrementalDeclinesBackwardExtension(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{
		testKey: {1: 5},
	})
	base := buy(day(3), 50, item(testKey, 10))
	old := newLedger(t, base)
	existing, err := fx.engine.Derive(old, day(5))
	require.NoError(t, err)

	// a transaction before the summary's first day cannot be patched in.
	updated := newLedger(t, base, buy(day(1), 5, item(testKey, 1)))
	cs := DetectChanges(old, updated)
	require.NotNil(t, cs)

	outcome, err := fx.updater.Apply(existing, updated, cs)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.RebuildReason)
	assert.Nil(t, outcome.Summary)
}

func TestIncrementalDeclinesWithoutExistingSummary(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{testKey: {1: 5}})
	updated := newLedger(t, buy(day(1), 5, item(testKey, 1)))
	cs := DetectChanges(NewLedger(), updated)
	require.NotNil(t, cs)

	outcome, err := fx.updater.Apply(NewDailySummary(), updated, cs)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.RebuildReason)
}

func TestIncrementalDeclinesOnUnpricedProduct(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{testKey: {1: 5}})
	base := buy(day(1), 50, item(testKey, 10))
	old := newLedger(t, base)
	existing, err := fx.engine.Derive(old, day(3))
	require.NoError(t, err)

	updated := newLedger(t, base, buy(day(2), 5, item(otherKey, 1)))
	cs := DetectChanges(old, updated)
	outcome, err := fx.updater.Apply(existing, updated, cs)
	require.NoError(t, err)
	assert.Contains(t, outcome.RebuildReason, "no price data")
}

func TestIncrementalRejectsInvalidMutation(t *testing.T) {
	fx := newFixture(t, map[ProductKey]map[int]float64{testKey: {1: 5}})
	base := buy(day(1), 50, item(testKey, 10))
	old := newLedger(t, base)
	existing, err := fx.engine.Derive(old, day(3))
	require.NoError(t, err)

	// selling more than is held must be rejected, not rebuilt around.
	updated := newLedger(t, base, sell(day(2), 100, item(testKey, 11)))
	cs := DetectChanges(old, updated)
	_, err = fx.updater.Apply(existing, updated, cs)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, testKey, verr.Key)
}

func TestIncrementalNilChangeSetIsNoop(t *testing.T) {
	fx := newFixture(t, nil)
	existing := NewDailySummary()
	existing.Append(day(1), entry(10, 10, 1))

	outcome, err := fx.updater.Apply(existing, NewLedger(), nil)
	require.NoError(t, err)
	assert.Same(t, existing, outcome.Summary)
}
