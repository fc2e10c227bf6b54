package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// PriceStore persists one daily price series per product under its directory,
// laid out as <dir>/<category>/<group>/<product>.json. Concurrent merges on
// the same product are serialized by a per-key lock; writes are atomic.
type PriceStore struct {
	dir string
	log zerolog.Logger

	mu    sync.Mutex
	locks map[ProductKey]*sync.Mutex
}

// NewPriceStore returns a store rooted at dir.
func NewPriceStore(dir string, log zerolog.Logger) *PriceStore {
	return &PriceStore{
		dir:   dir,
		log:   log.With().Str("component", "pricestore").Logger(),
		locks: make(map[ProductKey]*sync.Mutex),
	}
}

func (s *PriceStore) path(key ProductKey) string {
	return filepath.Join(s.dir, key.Category, key.Group, key.Product+".json")
}

func (s *PriceStore) keyLock(key ProductKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, exists := s.locks[key]
	if !exists {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Load reads the price series of a product. A product with no file yet
// yields an empty history, not an error.
func (s *PriceStore) Load(key ProductKey) (*date.History[Money], error) {
	var raw map[string]Money
	if err := readJSONFile(s.path(key), &raw); err != nil {
		if os.IsNotExist(err) {
			return &date.History[Money]{}, nil
		}
		return nil, fmt.Errorf("could not load prices for %s: %w", key, err)
	}
	h := &date.History[Money]{}
	for k, price := range raw {
		on, err := date.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in prices for %s: %w", k, key, err)
		}
		h.Append(on, price)
	}
	return h, nil
}

// Save writes the full price series of a product, keys sorted.
func (s *PriceStore) Save(key ProductKey, h *date.History[Money]) error {
	raw := make(map[string]Money, h.Len())
	for on, price := range h.Values() {
		raw[on.String()] = price
	}
	if err := writeJSONFile(s.path(key), raw); err != nil {
		return fmt.Errorf("could not save prices for %s: %w", key, err)
	}
	return nil
}

// Merge folds new prices into a product's stored series under its key lock,
// so concurrent fetch workers never lose each other's writes. Existing dates
// are overwritten: a freshly fetched price beats a carried-forward one.
func (s *PriceStore) Merge(key ProductKey, prices map[date.Date]Money) error {
	if len(prices) == 0 {
		return nil
	}
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	h, err := s.Load(key)
	if err != nil {
		return err
	}
	for on, price := range prices {
		h.Append(on, price)
	}
	s.log.Debug().Stringer("product", key).Int("prices", len(prices)).Msg("merged prices")
	return s.Save(key, h)
}

// FillPriceGaps expands a sparse price series into a dense day-by-day series
// over r. Days without a recorded price carry the most recent known price
// forward; days before the first known price take that first price. The
// returned list holds every day in r that had no recorded price, whether it
// was synthesized or, when the series is empty, left out entirely.
func FillPriceGaps(series *date.History[Money], r date.Range) (*date.History[Money], []date.Date) {
	filled := &date.History[Money]{}
	var gaps []date.Date

	if series.Len() == 0 {
		for day := range r.Days() {
			gaps = append(gaps, day)
		}
		return filled, gaps
	}

	_, first := series.First()
	for day := range r.Days() {
		if price, exact := series.Get(day); exact {
			filled.Append(day, price)
			continue
		}
		gaps = append(gaps, day)
		if price, known := series.ValueAsOf(day); known {
			filled.Append(day, price)
		} else {
			filled.Append(day, first)
		}
	}
	return filled, gaps
}

// GapReport maps products to the days for which no market price was ever
// recorded. It is persisted alongside the price files so missing data is
// visible instead of silently smoothed over.
type GapReport map[string][]date.Date

// Add records gap days for a product. Empty gap lists are dropped.
func (g GapReport) Add(key ProductKey, days []date.Date) {
	if len(days) == 0 {
		return
	}
	g[key.String()] = days
}

// Products returns the report's product keys in sorted order.
func (g GapReport) Products() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
