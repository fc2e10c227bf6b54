// Package tracker reconstructs a daily time series of total market value and
// net cost basis for a collection of tradeable items.
//
// The two sources of truth are an append-only [Ledger] of acquisition and
// disposal events, and sparse per-product daily price observations held in a
// [PriceStore]. Everything else is derived: the per-product inventory
// timeline, the gap-filled price series, and the persisted daily summary.
// Derived artifacts are caches and can be discarded and rebuilt at any time.
//
// A ledger mutation does not force a full recomputation: [DetectChanges]
// diffs the previous and current ledger snapshots, and [IncrementalUpdater]
// patches the existing summary with signed deltas, falling back to a full
// [ValuationEngine] run when the patch would be unsafe.
package tracker
