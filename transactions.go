package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// TxnType is a typed string for identifying transaction kinds.
type TxnType string

// Transaction kinds recorded in the ledger.
const (
	TxnBuy   TxnType = "BUY"
	TxnSell  TxnType = "SELL"
	TxnOpen  TxnType = "OPEN"
	TxnTrade TxnType = "TRADE"
)

// Transaction defines the common interface for all ledger entries. A
// transaction contributes signed quantity deltas to the inventory timeline
// and a signed cost-basis delta to the day it was received.
type Transaction interface {
	What() TxnType   // What returns the kind of the transaction.
	When() date.Date // When returns the date the items were received.
	Ident() string   // Ident returns the unique transaction id.
	Equal(Transaction) bool
	// QuantityDeltas returns the signed inventory change per product,
	// positive for items entering the collection.
	QuantityDeltas() []Item
	// BasisDelta returns the signed change in total cost basis.
	BasisDelta() Money
	// Validate checks the transaction against the clock's today.
	Validate(today date.Date) error
	fingerprintRows() []fingerprintRow
}

type baseTxn struct {
	ID   string    `json:"id"`
	Type TxnType   `json:"type"`
	Date date.Date `json:"date_received"` // Date is the day the items changed hands.
	// Purchased is the day the deal was struck, informational only.
	Purchased date.Date `json:"date_purchased,omitempty"`
	Memo      string    `json:"memo,omitempty"`
}

func (t baseTxn) What() TxnType   { return t.Type }
func (t baseTxn) When() date.Date { return t.Date }
func (t baseTxn) Ident() string   { return t.ID }

// MarshalJSON implements the json.Marshaler interface for baseTxn.
func (t baseTxn) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("date_received", t.Date)
	if !t.Purchased.IsZero() {
		w.Append("date_purchased", t.Purchased)
	}
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// Validate checks the fields every transaction shares. The received date is
// mandatory and may not be in the future; valuation always derives from it,
// never from the purchase date.
func (t *baseTxn) Validate(today date.Date) error {
	if t.ID == "" {
		return errors.New("transaction id is missing")
	}
	if t.Date.IsZero() {
		return errors.New("date received is missing")
	}
	if t.Date.After(today) {
		return fmt.Errorf("date received %s is in the future", t.Date)
	}
	return nil
}

// validateItems checks one side of a transaction. Every item needs an
// explicit category and a strictly positive quantity; there is no default
// category to fall back to.
func validateItems(items []Item) error {
	if len(items) == 0 {
		return errors.New("transaction has no items")
	}
	for _, it := range items {
		if it.Key.Category == "" {
			return fmt.Errorf("item %s/%s has no category", it.Key.Group, it.Key.Product)
		}
		if it.Key.Group == "" || it.Key.Product == "" {
			return fmt.Errorf("item %s is missing group or product id", it.Key)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("item %s has non-positive quantity %s", it.Key, it.Quantity)
		}
	}
	return nil
}

// Simple is a single-sided transaction: BUY and SELL move items against
// money, OPEN removes sealed items from the collection at no cost change.
type Simple struct {
	baseTxn
	Items  []Item
	Amount Money // total money for the whole side, always non-negative
}

// NewBuy creates a BUY transaction adding items for a total amount.
func NewBuy(id string, received, purchased date.Date, memo string, items []Item, amount Money) Simple {
	return Simple{
		baseTxn: baseTxn{ID: id, Type: TxnBuy, Date: received, Purchased: purchased, Memo: memo},
		Items:   items,
		Amount:  amount,
	}
}

// NewSell creates a SELL transaction removing items for a total amount.
func NewSell(id string, received, purchased date.Date, memo string, items []Item, amount Money) Simple {
	return Simple{
		baseTxn: baseTxn{ID: id, Type: TxnSell, Date: received, Purchased: purchased, Memo: memo},
		Items:   items,
		Amount:  amount,
	}
}

// NewOpen creates an OPEN transaction removing sealed items from the
// collection without any money changing hands.
func NewOpen(id string, received date.Date, memo string, items []Item) Simple {
	return Simple{
		baseTxn: baseTxn{ID: id, Type: TxnOpen, Date: received, Memo: memo},
		Items:   items,
	}
}

// MarshalJSON implements the json.Marshaler interface for Simple.
func (t Simple) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTxn)
	w.Append("items", t.Items)
	if t.Type != TxnOpen {
		w.Append("amount", t.Amount)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Simple.
func (t *Simple) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTxn
		Items  []Item `json:"items"`
		Amount Money  `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTxn = temp.baseTxn
	t.Items = temp.Items
	t.Amount = temp.Amount
	return nil
}

func (t Simple) Equal(other Transaction) bool {
	o, ok := other.(Simple)
	if !ok || t.baseTxn != o.baseTxn || !t.Amount.Equal(o.Amount) || len(t.Items) != len(o.Items) {
		return false
	}
	for i := range t.Items {
		if t.Items[i].Key != o.Items[i].Key || !t.Items[i].Quantity.Equal(o.Items[i].Quantity) {
			return false
		}
	}
	return true
}

// QuantityDeltas returns positive deltas for BUY, negative for SELL and OPEN.
func (t Simple) QuantityDeltas() []Item {
	deltas := make([]Item, 0, len(t.Items))
	for _, it := range t.Items {
		q := it.Quantity
		if t.Type != TxnBuy {
			q = q.Neg()
		}
		deltas = append(deltas, Item{Key: it.Key, Quantity: q})
	}
	return deltas
}

// BasisDelta adds the amount for BUY, subtracts it for SELL. OPEN leaves the
// cost basis untouched.
func (t Simple) BasisDelta() Money {
	switch t.Type {
	case TxnBuy:
		return t.Amount
	case TxnSell:
		return t.Amount.Neg()
	default:
		return Money{}
	}
}

func (t Simple) Validate(today date.Date) error {
	if err := t.baseTxn.Validate(today); err != nil {
		return err
	}
	switch t.Type {
	case TxnBuy, TxnSell:
		if t.Amount.IsNegative() {
			return fmt.Errorf("%s amount %s is negative", t.Type, t.Amount)
		}
	case TxnOpen:
		if !t.Amount.IsZero() {
			return errors.New("OPEN transaction cannot carry an amount")
		}
	default:
		return fmt.Errorf("unexpected type %q for a simple transaction", t.Type)
	}
	return validateItems(t.Items)
}

func (t Simple) fingerprintRows() []fingerprintRow {
	return fingerprintSide(t.When(), string(t.Type), t.Items, t.Amount)
}

// Trade is a two-sided transaction exchanging items for items. Each side
// carries its own declared cost basis: the outgoing basis leaves the
// collection, the incoming basis enters it.
type Trade struct {
	baseTxn
	ItemsOut     []Item
	ItemsIn      []Item
	CostBasisOut Money
	CostBasisIn  Money
}

// NewTrade creates a TRADE transaction.
func NewTrade(id string, received, purchased date.Date, memo string, out, in []Item, basisOut, basisIn Money) Trade {
	return Trade{
		baseTxn:      baseTxn{ID: id, Type: TxnTrade, Date: received, Purchased: purchased, Memo: memo},
		ItemsOut:     out,
		ItemsIn:      in,
		CostBasisOut: basisOut,
		CostBasisIn:  basisIn,
	}
}

// MarshalJSON implements the json.Marshaler interface for Trade.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTxn)
	w.Append("items_out", t.ItemsOut)
	w.Append("items_in", t.ItemsIn)
	w.Append("cost_basis_out", t.CostBasisOut)
	w.Append("cost_basis_in", t.CostBasisIn)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Trade.
func (t *Trade) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseTxn
		ItemsOut     []Item `json:"items_out"`
		ItemsIn      []Item `json:"items_in"`
		CostBasisOut Money  `json:"cost_basis_out"`
		CostBasisIn  Money  `json:"cost_basis_in"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseTxn = temp.baseTxn
	t.ItemsOut = temp.ItemsOut
	t.ItemsIn = temp.ItemsIn
	t.CostBasisOut = temp.CostBasisOut
	t.CostBasisIn = temp.CostBasisIn
	return nil
}

func (t Trade) Equal(other Transaction) bool {
	o, ok := other.(Trade)
	if !ok || t.baseTxn != o.baseTxn {
		return false
	}
	if !t.CostBasisOut.Equal(o.CostBasisOut) || !t.CostBasisIn.Equal(o.CostBasisIn) {
		return false
	}
	return itemsEqual(t.ItemsOut, o.ItemsOut) && itemsEqual(t.ItemsIn, o.ItemsIn)
}

func itemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !a[i].Quantity.Equal(b[i].Quantity) {
			return false
		}
	}
	return true
}

// QuantityDeltas returns negative deltas for the outgoing side followed by
// positive deltas for the incoming side.
func (t Trade) QuantityDeltas() []Item {
	deltas := make([]Item, 0, len(t.ItemsOut)+len(t.ItemsIn))
	for _, it := range t.ItemsOut {
		deltas = append(deltas, Item{Key: it.Key, Quantity: it.Quantity.Neg()})
	}
	for _, it := range t.ItemsIn {
		deltas = append(deltas, Item{Key: it.Key, Quantity: it.Quantity})
	}
	return deltas
}

// BasisDelta removes the outgoing basis and adds the incoming one.
func (t Trade) BasisDelta() Money {
	return t.CostBasisIn.Sub(t.CostBasisOut)
}

func (t Trade) Validate(today date.Date) error {
	if err := t.baseTxn.Validate(today); err != nil {
		return err
	}
	if t.Type != TxnTrade {
		return fmt.Errorf("unexpected type %q for a trade", t.Type)
	}
	if t.CostBasisOut.IsNegative() || t.CostBasisIn.IsNegative() {
		return errors.New("trade cost basis cannot be negative")
	}
	if err := validateItems(t.ItemsOut); err != nil {
		return fmt.Errorf("outgoing side: %w", err)
	}
	if err := validateItems(t.ItemsIn); err != nil {
		return fmt.Errorf("incoming side: %w", err)
	}
	return nil
}

func (t Trade) fingerprintRows() []fingerprintRow {
	rows := fingerprintSide(t.When(), "TRADE_OUT", t.ItemsOut, t.CostBasisOut)
	return append(rows, fingerprintSide(t.When(), "TRADE_IN", t.ItemsIn, t.CostBasisIn)...)
}
