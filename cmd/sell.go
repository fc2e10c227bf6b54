package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

type sellCmd struct {
	received  string
	purchased string
	items     itemsFlag
	amount    float64
	memo      string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of items" }
func (*sellCmd) Usage() string {
	return `tcg sell -i <cat/group/product:qty> [-i ...] -a <amount> [-d <date>] [-p <date>] [-m <memo>]

  Records a sale. The amount is the total received for all items; it leaves
  the cost basis on the day the items were handed over. Selling more than is
  held is rejected.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.received, "d", date.Today().String(), "Date the items were handed over (YYYY-MM-DD)")
	f.StringVar(&c.purchased, "p", "", "Date the deal was struck, informational (YYYY-MM-DD)")
	f.Var(&c.items, "i", "Item as category/group/product:quantity, repeatable")
	f.Float64Var(&c.amount, "a", 0, "Total amount received")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	tx := tracker.NewSell(tracker.NewTransactionID(), received, purchased, c.memo, c.items, tracker.M(c.amount))
	if err := t.Record(ctx, tx); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded sale %s\n", tx.Ident())
	return subcommands.ExitSuccess
}
