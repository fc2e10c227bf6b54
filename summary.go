package tracker

import (
	"fmt"
	"os"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// SummaryEntry is one derived day: the market value of everything held, the
// net money put into the collection so far, and the number of items owned.
type SummaryEntry struct {
	TotalValue Money    `json:"total_value"`
	CostBasis  Money    `json:"cost_basis"`
	ItemsOwned Quantity `json:"items_owned"`
}

// Rounded returns the entry with money rounded to cents, the precision at
// which summaries are persisted and compared.
func (e SummaryEntry) Rounded() SummaryEntry {
	return SummaryEntry{
		TotalValue: e.TotalValue.Rounded(),
		CostBasis:  e.CostBasis.Rounded(),
		ItemsOwned: e.ItemsOwned,
	}
}

// DailySummary is the derived day-by-day valuation of the collection. A valid
// summary is contiguous: it covers every calendar day between its first and
// last entries.
type DailySummary struct {
	days *date.History[SummaryEntry]
}

// NewDailySummary returns an empty summary.
func NewDailySummary() *DailySummary {
	return &DailySummary{days: &date.History[SummaryEntry]{}}
}

// Len returns the number of days covered.
func (s *DailySummary) Len() int { return s.days.Len() }

// Append records or overwrites the entry for a day. Entries keep their
// exact amounts in memory; rounding happens when the summary is persisted.
func (s *DailySummary) Append(on date.Date, e SummaryEntry) {
	s.days.Append(on, e)
}

// Get returns the entry for an exact day.
func (s *DailySummary) Get(on date.Date) (SummaryEntry, bool) {
	return s.days.Get(on)
}

// First returns the earliest day and its entry.
func (s *DailySummary) First() (date.Date, SummaryEntry) { return s.days.First() }

// Latest returns the most recent day and its entry.
func (s *DailySummary) Latest() (date.Date, SummaryEntry) { return s.days.Latest() }

// Range returns the span from first to last covered day.
func (s *DailySummary) Range() date.Range {
	from, _ := s.days.First()
	to, _ := s.days.Latest()
	return date.NewRange(from, to)
}

// Days iterates entries in chronological order.
func (s *DailySummary) Days() *date.History[SummaryEntry] { return s.days }

// Clone returns an independent copy of the summary.
func (s *DailySummary) Clone() *DailySummary {
	return &DailySummary{days: s.days.Clone()}
}

// Validate checks date continuity. Any missing day between the first and
// last entries is a hole that would silently skew charts and comparisons.
func (s *DailySummary) Validate() error {
	if s.days.Len() == 0 {
		return nil
	}
	var missing []date.Date
	for day := range s.Range().Days() {
		if _, exists := s.days.Get(day); !exists {
			missing = append(missing, day)
		}
	}
	if len(missing) > 0 {
		return &DateContinuityError{Missing: missing}
	}
	return nil
}

// DecodeDailySummary reads a persisted summary file. A missing file yields
// an empty summary.
func DecodeDailySummary(path string) (*DailySummary, error) {
	var raw map[string]SummaryEntry
	if err := readJSONFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return NewDailySummary(), nil
		}
		return nil, fmt.Errorf("could not load daily summary: %w", err)
	}
	s := NewDailySummary()
	for k, e := range raw {
		on, err := date.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in daily summary: %w", k, err)
		}
		s.Append(on, e)
	}
	return s, nil
}

// EncodeDailySummary writes the summary atomically, one entry per day with
// money rounded to cents, keys sorted.
func EncodeDailySummary(path string, s *DailySummary) error {
	raw := make(map[string]SummaryEntry, s.days.Len())
	for on, e := range s.days.Values() {
		raw[on.String()] = e.Rounded()
	}
	if err := writeJSONFile(path, raw); err != nil {
		return fmt.Errorf("could not save daily summary: %w", err)
	}
	return nil
}
