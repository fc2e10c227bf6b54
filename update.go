package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// PriceSource fetches market prices for every product of one category/group
// pair on one day, keyed by product id. Implementations are expected to be
// safe for concurrent use.
type PriceSource interface {
	Fetch(ctx context.Context, on date.Date, category, group string) (map[string]Money, error)
}

// Tracker ties the ledger, the price store and the derivation layers
// together over one data directory. All mutations go through it, so the
// persisted ledger and summary never drift apart.
type Tracker struct {
	cfg     Config
	log     zerolog.Logger
	source  PriceSource
	prices  *PriceStore
	engine  *ValuationEngine
	updater *IncrementalUpdater
	today   func() date.Date

	mu      sync.Mutex // serializes mutations
	ledger  *Ledger
	catalog Catalog
	summary *DailySummary
	stale   bool // summary does not reflect the ledger
}

// Open loads the tracker state from the config's data directory. A fresh
// directory yields an empty tracker.
func Open(cfg Config, source PriceSource, log zerolog.Logger) (*Tracker, error) {
	prices := NewPriceStore(cfg.PricesDir(), log)
	t := &Tracker{
		cfg:     cfg,
		log:     log.With().Str("component", "tracker").Logger(),
		source:  source,
		prices:  prices,
		engine:  NewValuationEngine(prices, log),
		updater: NewIncrementalUpdater(prices, log),
		today:   date.Today,
	}

	f, err := os.Open(cfg.LedgerFile())
	switch {
	case os.IsNotExist(err):
		t.ledger = NewLedger()
	case err != nil:
		return nil, fmt.Errorf("could not open ledger: %w", err)
	default:
		defer f.Close()
		if t.ledger, err = DecodeLedger(f); err != nil {
			return nil, err
		}
	}

	if t.catalog, err = DecodeCatalog(cfg.CatalogFile()); err != nil {
		return nil, err
	}
	if t.summary, err = DecodeDailySummary(cfg.SummaryFile()); err != nil {
		return nil, err
	}
	if err := t.summary.Validate(); err != nil {
		t.log.Warn().Err(err).Msg("stored summary has holes, a rebuild will repair it")
	}
	if _, err := os.Stat(cfg.StaleFile()); err == nil {
		t.stale = true
		t.log.Warn().Msg("summary is stale, update prices to repair it")
	}
	return t, nil
}

// markStale records on disk that the summary no longer reflects the ledger,
// so the incremental shortcut stays disabled across restarts.
func (t *Tracker) markStale() {
	t.stale = true
	if err := os.WriteFile(t.cfg.StaleFile(), []byte("summary does not reflect the ledger; update prices\n"), 0o644); err != nil {
		t.log.Error().Err(err).Msg("could not write stale marker")
	}
}

func (t *Tracker) clearStale() {
	if !t.stale {
		return
	}
	t.stale = false
	if err := os.Remove(t.cfg.StaleFile()); err != nil && !os.IsNotExist(err) {
		t.log.Error().Err(err).Msg("could not remove stale marker")
	}
}

// Ledger returns a snapshot of the current ledger.
func (t *Tracker) Ledger() *Ledger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Snapshot()
}

// Summary returns the current daily summary.
func (t *Tracker) Summary() *DailySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary.Clone()
}

// Record validates and appends a transaction, then brings the summary up to
// date, incrementally when possible. On a ValidationError nothing is
// persisted.
func (t *Tracker) Record(ctx context.Context, tx Transaction) error {
	return t.mutate(ctx, func(next *Ledger) error { return next.Append(tx) })
}

// Delete removes the transaction with the given id and re-derives the days
// it touched.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.mutate(ctx, func(next *Ledger) error {
		_, err := next.Remove(id)
		return err
	})
}

// Amend replaces the stored transaction carrying tx's id.
func (t *Tracker) Amend(ctx context.Context, tx Transaction) error {
	return t.mutate(ctx, func(next *Ledger) error {
		_, err := next.Replace(tx)
		return err
	})
}

// mutate applies a ledger mutation on a copy, validates it, updates the
// summary and persists everything. The live state only changes once every
// step succeeded.
func (t *Tracker) mutate(ctx context.Context, change func(*Ledger) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.ledger.Snapshot()
	if err := change(next); err != nil {
		return err
	}
	today := t.today()
	for tx := range next.Transactions() {
		if err := tx.Validate(today); err != nil {
			return err
		}
	}

	cs := DetectChanges(t.ledger, next)
	if cs == nil {
		// memo or id edits change the file but not any derived value.
		t.log.Debug().Msg("mutation produced no value-level change")
		if err := t.persistLedger(next); err != nil {
			return err
		}
		t.ledger = next
		return nil
	}

	summary, err := t.refresh(ctx, next, cs)
	var derr *DataIntegrityError
	if errors.As(err, &derr) && t.source != nil {
		// the mutation touched products with no price history yet. Fetch
		// only those before giving up on the summary.
		t.log.Info().Stringer("day", derr.On).Msg("fetching prices for changed products")
		if ferr := t.fetchProducts(ctx, next, cs.ChangedProducts); ferr != nil {
			return ferr
		}
		summary, err = t.refresh(ctx, next, cs)
	}
	switch {
	case errors.As(err, &derr):
		// prices are missing, not the mutation's fault: keep the ledger
		// change, flag the summary so no later shortcut trusts it, and
		// wait for the next price update.
		t.log.Warn().Stringer("day", derr.On).Msg("summary is stale until prices are updated")
		t.markStale()
		summary = t.summary
	case err != nil:
		return err
	}

	if err := t.persistLedger(next); err != nil {
		return err
	}
	if summary != t.summary {
		if err := EncodeDailySummary(t.cfg.SummaryFile(), summary); err != nil {
			return err
		}
		t.clearStale()
	}
	for key := range cs.ChangedProducts {
		t.catalog.Ensure(key)
	}
	if err := EncodeCatalog(t.cfg.CatalogFile(), t.catalog); err != nil {
		return err
	}
	t.ledger = next
	t.summary = summary
	return nil
}

// refresh updates the summary for a change set, falling back to a full
// derivation when the incremental path declines.
func (t *Tracker) refresh(ctx context.Context, next *Ledger, cs *ChangeSet) (*DailySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.stale {
		// the stored summary is missing an earlier change set; patching
		// this one on top would persist wrong values.
		t.log.Info().Msg("summary is stale, deriving from scratch")
		return t.engine.Derive(next, t.until())
	}
	outcome, err := t.updater.Apply(t.summary, next, cs)
	if err != nil {
		return nil, err
	}
	if outcome.RebuildReason != "" {
		t.log.Info().Str("reason", outcome.RebuildReason).Msg("falling back to full rebuild")
		return t.engine.Derive(next, t.until())
	}
	return t.extend(next, outcome.Summary)
}

// extend derives the days between the summary's last entry and today, which
// the incremental path does not cover.
func (t *Tracker) extend(ledger *Ledger, summary *DailySummary) (*DailySummary, error) {
	today := t.until()
	last, _ := summary.Latest()
	if summary.Len() == 0 || !last.Before(today) {
		return summary, nil
	}
	full, err := t.engine.Derive(ledger, today)
	if err != nil {
		return nil, err
	}
	out := summary.Clone()
	for day := range date.NewRange(last.Add(1), today).Days() {
		if entry, exists := full.Get(day); exists {
			out.Append(day, entry)
		}
	}
	return out, nil
}

// until returns the end of the derivation window: today, capped by the
// configured horizon.
func (t *Tracker) until() date.Date {
	today := t.today()
	if t.cfg.Horizon == "" {
		return today
	}
	h, err := date.Parse(t.cfg.Horizon)
	if err != nil {
		return today
	}
	return date.Min(today, h)
}

// Rebuild re-derives the whole summary from the ledger and persists it.
func (t *Tracker) Rebuild(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	summary, err := t.engine.Derive(t.ledger, t.until())
	if err != nil {
		// keep the partial result on disk for inspection, but report the
		// failure: the summary must not pass for complete.
		var derr *DataIntegrityError
		if errors.As(err, &derr) && summary.Len() > 0 {
			if werr := EncodeDailySummary(t.cfg.SummaryFile(), summary); werr != nil {
				return werr
			}
		}
		return err
	}
	if err := EncodeDailySummary(t.cfg.SummaryFile(), summary); err != nil {
		return err
	}
	t.summary = summary
	t.clearStale()
	t.log.Info().Int("days", summary.Len()).Msg("summary rebuilt")
	return nil
}

// Holdings returns the current holdings view.
func (t *Tracker) Holdings(on date.Date) ([]Holding, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on.IsZero() {
		on = t.today()
	}
	return Holdings(t.ledger, t.prices, t.catalog, on, t.cfg.LookbackDays)
}

// Catalog returns the product metadata catalog.
func (t *Tracker) Catalog() Catalog {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.catalog
}

func (t *Tracker) persistLedger(l *Ledger) error {
	var b strings.Builder
	if err := EncodeLedger(&b, l); err != nil {
		return err
	}
	return atomicWriteFile(t.cfg.LedgerFile(), []byte(b.String()))
}

// fetchTask is one (day, category, group) archive to pull.
type fetchTask struct {
	on       date.Date
	category string
	group    string
}

// UpdatePrices fetches the price archives needed to cover every owned day of
// every product, merges them into the store, fills gaps, writes the gap
// report, and brings the summary up to date. Downloads run on a bounded
// worker pool.
func (t *Tracker) UpdatePrices(ctx context.Context) (GapReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.source == nil {
		return nil, fmt.Errorf("no price source configured")
	}
	today := t.until()
	inventory := ComputeInventory(t.ledger)

	// plan which archives are needed: one fetch covers every product of a
	// category/group pair for a day, so tasks are deduplicated across
	// products before filtering out days already priced.
	groups := make(map[fetchTask][]ProductKey)
	for key := range inventory {
		span, owned := inventory.OwnedRange(key, today)
		if !owned {
			continue
		}
		for day := range span.Days() {
			task := fetchTask{on: day, category: key.Category, group: key.Group}
			groups[task] = append(groups[task], key)
		}
	}
	var tasks []fetchTask
	for task, keys := range groups {
		needed := false
		for _, key := range keys {
			series, err := t.prices.Load(key)
			if err != nil {
				return nil, err
			}
			if _, exact := series.Get(task.on); !exact {
				needed = true
				break
			}
		}
		if needed {
			tasks = append(tasks, task)
		}
	}
	t.log.Info().Int("archives", len(tasks)).Msg("fetching price archives")

	if err := t.fetchAll(ctx, tasks, groups); err != nil {
		return nil, err
	}

	// fill gaps over every owned range and report what stays unknown.
	report := make(GapReport)
	for key := range inventory {
		span, owned := inventory.OwnedRange(key, today)
		if !owned {
			continue
		}
		series, err := t.prices.Load(key)
		if err != nil {
			return nil, err
		}
		filled, gaps := FillPriceGaps(series, span)
		if filled.Len() > 0 {
			if err := t.prices.Save(key, filled); err != nil {
				return nil, err
			}
		}
		report.Add(key, gaps)
	}
	if err := writeJSONFile(t.cfg.GapReportFile(), report); err != nil {
		return nil, err
	}

	summary, err := t.engine.Derive(t.ledger, today)
	if err != nil {
		return report, err
	}
	if err := EncodeDailySummary(t.cfg.SummaryFile(), summary); err != nil {
		return report, err
	}
	t.summary = summary
	t.clearStale()
	return report, nil
}

// fetchProducts fetches and gap-fills price history for the given products
// only, over their owned ranges in the ledger.
func (t *Tracker) fetchProducts(ctx context.Context, ledger *Ledger, products map[ProductKey]struct{}) error {
	today := t.until()
	inventory := ComputeInventory(ledger)

	groups := make(map[fetchTask][]ProductKey)
	for key := range products {
		span, owned := inventory.OwnedRange(key, today)
		if !owned {
			continue
		}
		for day := range span.Days() {
			task := fetchTask{on: day, category: key.Category, group: key.Group}
			groups[task] = append(groups[task], key)
		}
	}
	var tasks []fetchTask
	for task, keys := range groups {
		needed := false
		for _, key := range keys {
			series, err := t.prices.Load(key)
			if err != nil {
				return err
			}
			if _, exact := series.Get(task.on); !exact {
				needed = true
				break
			}
		}
		if needed {
			tasks = append(tasks, task)
		}
	}
	if err := t.fetchAll(ctx, tasks, groups); err != nil {
		return err
	}

	for key := range products {
		span, owned := inventory.OwnedRange(key, today)
		if !owned {
			continue
		}
		series, err := t.prices.Load(key)
		if err != nil {
			return err
		}
		filled, _ := FillPriceGaps(series, span)
		if filled.Len() > 0 {
			if err := t.prices.Save(key, filled); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchAll runs the fetch tasks on cfg.FetchWorkers goroutines, merging each
// result into the price store keyed by the products that need it.
func (t *Tracker) fetchAll(ctx context.Context, tasks []fetchTask, groups map[fetchTask][]ProductKey) error {
	sem := make(chan struct{}, t.cfg.FetchWorkers)
	errs := make(chan error, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task fetchTask) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}

			fetched, err := t.source.Fetch(ctx, task.on, task.category, task.group)
			if err != nil {
				// a failed fetch is just a day without an observation; the
				// gap-fill pass and the gap report absorb it.
				t.log.Warn().Err(err).Stringer("day", task.on).
					Str("category", task.category).Str("group", task.group).
					Msg("archive fetch failed, day left unobserved")
				return
			}
			for _, key := range groups[task] {
				price, exists := fetched[key.Product]
				if !exists {
					continue
				}
				if err := t.prices.Merge(key, map[date.Date]Money{task.on: price}); err != nil {
					errs <- err
					return
				}
			}
		}(task)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
