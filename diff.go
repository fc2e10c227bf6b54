package tracker

import (
	"github.com/gauravagarwal003/tcg-tracker/date"
)

// fingerprintRow is the value-level identity of one item line within a
// transaction. Ids, memos and ordering are deliberately absent: two ledgers
// with the same rows describe the same collection history.
type fingerprintRow struct {
	Date      string
	Kind      string
	Category  string
	Group     string
	Product   string
	Quantity  string // 4 decimal places
	UnitPrice string // 4 decimal places, side amount spread over side quantity
}

// fingerprintSide renders one side of a transaction into rows. The side's
// amount is spread evenly over its total quantity, so reordering items or
// splitting a line into two equal halves does not change the fingerprint.
func fingerprintSide(on date.Date, kind string, items []Item, amount Money) []fingerprintRow {
	var total Quantity
	for _, it := range items {
		total = total.Add(it.Quantity)
	}
	var unit Money
	if total.IsPositive() {
		unit = amount.Div(total)
	}
	unitStr := unit.Decimal().Round(4).String()

	rows := make([]fingerprintRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, fingerprintRow{
			Date:      on.String(),
			Kind:      kind,
			Category:  it.Key.Category,
			Group:     it.Key.Group,
			Product:   it.Key.Product,
			Quantity:  it.Quantity.Decimal().Round(4).String(),
			UnitPrice: unitStr,
		})
	}
	return rows
}

// rowBag counts fingerprint rows as a multiset, so duplicated transactions
// are told apart from a single one.
type rowBag map[fingerprintRow]int

func fingerprintLedger(l *Ledger) rowBag {
	bag := make(rowBag)
	for tx := range l.Transactions() {
		for _, row := range tx.fingerprintRows() {
			bag[row]++
		}
	}
	return bag
}

// subtract returns the rows of a that are not covered by b, with their
// remaining counts.
func (a rowBag) subtract(b rowBag) rowBag {
	out := make(rowBag)
	for row, n := range a {
		if rest := n - b[row]; rest > 0 {
			out[row] = rest
		}
	}
	return out
}

// ChangeSet describes how a new ledger differs from the one a summary was
// derived from. ResumeDate is the earliest day whose derived values can no
// longer be trusted.
type ChangeSet struct {
	ResumeDate      date.Date
	ChangedProducts map[ProductKey]struct{}
	Added           []Transaction
	Removed         []Transaction
}

// DetectChanges compares two ledgers by their row fingerprints and returns
// the transactions that were added and removed, or nil when the ledgers are
// equivalent. An edited transaction shows up as one removal and one
// addition.
func DetectChanges(old, new *Ledger) *ChangeSet {
	oldBag := fingerprintLedger(old)
	newBag := fingerprintLedger(new)

	removedRows := oldBag.subtract(newBag)
	addedRows := newBag.subtract(oldBag)
	if len(removedRows) == 0 && len(addedRows) == 0 {
		return nil
	}

	cs := &ChangeSet{ChangedProducts: make(map[ProductKey]struct{})}
	cs.Removed = consume(old, removedRows)
	cs.Added = consume(new, addedRows)

	for _, tx := range append(append([]Transaction{}, cs.Removed...), cs.Added...) {
		if cs.ResumeDate.IsZero() || tx.When().Before(cs.ResumeDate) {
			cs.ResumeDate = tx.When()
		}
		for _, d := range tx.QuantityDeltas() {
			cs.ChangedProducts[d.Key] = struct{}{}
		}
	}
	return cs
}

// consume maps residual rows back to whole transactions. A transaction is
// affected when at least one of its rows still has residual count; its rows
// are then consumed so that a duplicate of an unaffected transaction is not
// dragged in.
func consume(l *Ledger, residual rowBag) []Transaction {
	var affected []Transaction
	for tx := range l.Transactions() {
		hit := false
		for _, row := range tx.fingerprintRows() {
			if residual[row] > 0 {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, row := range tx.fingerprintRows() {
			if residual[row] > 0 {
				residual[row]--
			}
		}
		affected = append(affected, tx)
	}
	return affected
}
