package tracker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger reads transactions from a stream of JSONL data, decodes each
// line into the appropriate transaction struct, and returns a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Type TxnType `json:"type"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify transaction type in line %q: %w", string(lineBytes), err)
		}

		var decodedTx Transaction

		switch identifier.Type {
		case TxnBuy, TxnSell, TxnOpen:
			var tx Simple
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode %s transaction: %w", identifier.Type, err)
			}
			decodedTx = tx
		case TxnTrade:
			var tx Trade
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode TRADE transaction: %w", err)
			}
			decodedTx = tx
		case "PULL":
			return nil, fmt.Errorf("transaction type PULL is not supported: record the removal of sealed product as an OPEN transaction instead")
		default:
			return nil, fmt.Errorf("unknown transaction type %q in line %q", identifier.Type, string(lineBytes))
		}

		if err := ledger.Append(decodedTx); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeTransaction writes a single transaction as one JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not marshal transaction %q: %w", tx.Ident(), err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

// EncodeLedger persists all transactions in chronological order to an
// io.Writer in JSONL format.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for tx := range ledger.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
