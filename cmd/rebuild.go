package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type rebuildCmd struct{}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "re-derive the whole daily summary" }
func (*rebuildCmd) Usage() string {
	return `tcg rebuild

  Re-derives the daily summary from the ledger and the stored prices,
  replacing the persisted summary. The result is identical to what the
  incremental updates should have maintained.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {}

func (c *rebuildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	if err := t.Rebuild(ctx); err != nil {
		return fail(err)
	}
	fmt.Println("Summary rebuilt.")
	return subcommands.ExitSuccess
}
