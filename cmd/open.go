package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

type openCmd struct {
	received string
	items    itemsFlag
	memo     string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "record opening sealed product" }
func (*openCmd) Usage() string {
	return `tcg open -i <cat/group/product:qty> [-i ...] [-d <date>] [-m <memo>]

  Removes sealed product from the collection without any money changing
  hands. The cost basis stays where it is.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.received, "d", date.Today().String(), "Date the product was opened (YYYY-MM-DD)")
	f.Var(&c.items, "i", "Item as category/group/product:quantity, repeatable")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.items) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	received, err := date.Parse(c.received)
	if err != nil {
		return fail(fmt.Errorf("bad date: %w", err))
	}

	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	tx := tracker.NewOpen(tracker.NewTransactionID(), received, c.memo, c.items)
	if err := t.Record(ctx, tx); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded opening %s\n", tx.Ident())
	return subcommands.ExitSuccess
}
