package tracker

import (
	"fmt"
	"strings"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// ValidationError reports a transaction that would make the recorded state
// inconsistent, such as an inventory going negative. The mutation that raised
// it must be rejected without touching any persisted file.
type ValidationError struct {
	Key      ProductKey
	On       date.Date
	Quantity Quantity // resulting quantity that violated the invariant
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s would hold %s on %s", e.Key, e.Quantity, e.On)
}

// DataIntegrityError reports a derivation day for which every owned product
// had no usable price, leaving the day's total at zero while items were held.
// It signals missing price data rather than an empty collection.
type DataIntegrityError struct {
	On date.Date
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("no price data produced a value on %s while items were held", e.On)
}

// DateContinuityError reports holes in a daily summary. A summary must cover
// every calendar day between its first and last entries.
type DateContinuityError struct {
	Missing []date.Date
}

func (e *DateContinuityError) Error() string {
	days := make([]string, 0, len(e.Missing))
	for _, d := range e.Missing {
		days = append(days, d.String())
	}
	return fmt.Sprintf("daily summary is missing %d days: %s", len(e.Missing), strings.Join(days, ", "))
}
