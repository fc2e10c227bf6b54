package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove a transaction by id" }
func (*rmCmd) Usage() string {
	return `tcg rm <transaction-id>

  Removes a transaction from the ledger and re-derives the days it touched.
  The removal is rejected if it would make any inventory go negative.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	id := f.Arg(0)
	if err := t.Delete(ctx, id); err != nil {
		return fail(err)
	}
	fmt.Printf("Removed transaction %s\n", id)
	return subcommands.ExitSuccess
}
