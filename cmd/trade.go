package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

type tradeCmd struct {
	received  string
	purchased string
	out       itemsFlag
	in        itemsFlag
	basisOut  float64
	basisIn   float64
	memo      string
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "record an items-for-items trade" }
func (*tradeCmd) Usage() string {
	return `tcg trade -out <cat/group/product:qty> [-out ...] -in <cat/group/product:qty> [-in ...] -bo <basis> -bi <basis> [-d <date>] [-m <memo>]

  Exchanges items for items. The outgoing basis leaves the cost basis and
  the incoming basis enters it, so a fair trade is basis-neutral only when
  both sides declare the same value.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.received, "d", date.Today().String(), "Date the trade settled (YYYY-MM-DD)")
	f.StringVar(&c.purchased, "p", "", "Date the trade was agreed, informational (YYYY-MM-DD)")
	f.Var(&c.out, "out", "Outgoing item as category/group/product:quantity, repeatable")
	f.Var(&c.in, "in", "Incoming item as category/group/product:quantity, repeatable")
	f.Float64Var(&c.basisOut, "bo", 0, "Cost basis of the outgoing side")
	f.Float64Var(&c.basisIn, "bi", 0, "Cost basis of the incoming side")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(c.out) == 0 || len(c.in) == 0 {
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
	tx := tracker.NewTrade(tracker.NewTransactionID(), received, purchased, c.memo,
		c.out, c.in, tracker.M(c.basisOut), tracker.M(c.basisIn))
	if err := t.Record(ctx, tx); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded trade %s\n", tx.Ident())
	return subcommands.ExitSuccess
}
