package tracker

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

func TestPriceStoreRoundTrip(t *testing.T) {
	store := NewPriceStore(t.TempDir(), zerolog.Nop())

	// unknown product loads empty, not an error.
	h, err := store.Load(testKey)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())

	require.NoError(t, store.Merge(testKey, map[date.Date]Money{
		day(1): M(5),
		day(3): M(6.5),
	}))
	h, err = store.Load(testKey)
	require.NoError(t, err)
	require.Equal(t, 2, h.Len())
	p, exact := h.Get(day(3))
	require.True(t, exact)
	assert.True(t, p.Equal(M(6.5)))
}

func TestPriceStoreMergeOverwrites(t *testing.T) {
	store := NewPriceStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, store.Merge(testKey, map[date.Date]Money{day(1): M(5)}))
	require.NoError(t, store.Merge(testKey, map[date.Date]Money{day(1): M(7)}))

	h, err := store.Load(testKey)
	require.NoError(t, err)
	p, _ := h.Get(day(1))
	assert.True(t, p.Equal(M(7)))
}

func TestPriceStoreConcurrentMerges(t *testing.T) {
	store := NewPriceStore(t.TempDir(), zerolog.Nop())

	var wg sync.WaitGroup
	for d := 1; d <= 20; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			err := store.Merge(testKey, map[date.Date]Money{day(d): M(float64(d))})
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	h, err := store.Load(testKey)
	require.NoError(t, err)
	assert.Equal(t, 20, h.Len(), "concurrent merges must not lose writes")
}

func TestFillPriceGapsCarriesForward(t *testing.T) {
	series := &date.History[Money]{}
	series.Append(day(2), M(5))
	series.Append(day(5), M(8))

	filled, gaps := FillPriceGaps(series, date.NewRange(day(2), day(6)))
	require.Equal(t, 5, filled.Len())

	expect := map[int]float64{2: 5, 3: 5, 4: 5, 5: 8, 6: 8}
	for d, want := range expect {
		p, exists := filled.Get(day(d))
		require.True(t, exists, "day %d missing", d)
		assert.True(t, p.Equal(M(want)), "day %d = %s, want %v", d, p, want)
	}
	// days 3, 4 and 6 had no recorded price.
	assert.Len(t, gaps, 3)
}

func TestFillPriceGapsBackfillsLeadingDays(t *testing.T) {
	series := &date.History[Money]{}
	series.Append(day(4), M(10))

	filled, gaps := FillPriceGaps(series, date.NewRange(day(1), day(4)))
	for d := 1; d <= 4; d++ {
		p, exists := filled.Get(day(d))
		require.True(t, exists)
		assert.True(t, p.Equal(M(10)), "leading day %d must take the first known price", d)
	}
	assert.Len(t, gaps, 3)
}

func TestFillPriceGapsEmptySeries(t *testing.T) {
	filled, gaps := FillPriceGaps(&date.History[Money]{}, date.NewRange(day(1), day(3)))
	assert.Equal(t, 0, filled.Len())
	assert.Len(t, gaps, 3)
}

func TestGapReport(t *testing.T) {
	report := make(GapReport)
	report.Add(testKey, []date.Date{day(1)})
	report.Add(otherKey, nil) // empty lists are dropped

	assert.Equal(t, []string{testKey.String()}, report.Products())
}
