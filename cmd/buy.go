package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

type buyCmd struct {
	received  string
	purchased string
	items     itemsFlag
	amount    float64
	memo      string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of items" }
func (*buyCmd) Usage() string {
	return `tcg buy -i <cat/group/product:qty> [-i ...] -a <amount> [-d <date>] [-p <date>] [-m <memo>]

  Records a purchase. The amount is the total paid for all items; it enters
  the cost basis on the day the items were received.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.received, "d", date.Today().String(), "Date the items were received (YYYY-MM-DD)")
	f.StringVar(&c.purchased, "p", "", "Date the deal was struck, informational (YYYY-MM-DD)")
	f.Var(&c.items, "i", "Item as category/group/product:quantity, repeatable")
	f.Float64Var(&c.amount, "a", 0, "Total amount paid")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.items) == 0 || c.amount < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	received, purchased, err := parseDates(c.received, c.purchased)
	if err != nil {
		return fail(err)
	}

	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	tx := tracker.NewBuy(tracker.NewTransactionID(), received, purchased, c.memo, c.items, tracker.M(c.amount))
	if err := t.Record(ctx, tx); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded purchase %s\n", tx.Ident())
	return subcommands.ExitSuccess
}

// parseDates parses the received date and the optional purchased date.
func parseDates(received, purchased string) (date.Date, date.Date, error) {
	r, err := date.Parse(received)
	if err != nil {
		return date.Date{}, date.Date{}, fmt.Errorf("bad received date: %w", err)
	}
	var p date.Date
	if purchased != "" {
		if p, err = date.Parse(purchased); err != nil {
			return date.Date{}, date.Date{}, fmt.Errorf("bad purchased date: %w", err)
		}
	}
	return r, p, nil
}
