package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type updateCmd struct{}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch price archives and refresh the summary" }
func (*updateCmd) Usage() string {
	return `tcg update

  Downloads the daily price archives needed to cover every owned day, fills
  gaps by carrying prices forward, writes the gap report and re-derives the
  daily summary.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	report, err := t.UpdatePrices(ctx)
	if err != nil {
		return fail(err)
	}
	if len(report) == 0 {
		fmt.Println("Prices updated, no gaps.")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Prices updated, %d products have gap days:\n", len(report))
	for _, product := range report.Products() {
		fmt.Printf("  %s: %d days\n", product, len(report[product]))
	}
	return subcommands.ExitSuccess
}
