package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

type holdingsCmd struct {
	on string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list currently owned items with their latest price" }
func (*holdingsCmd) Usage() string {
	return `tcg holdings [-d <date>]

  Lists everything held on a day with the most recent known price. Products
  whose price is older than the lookback window show no price at all.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", "", "Day to report on, defaults to today (YYYY-MM-DD)")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on date.Date
	if c.on != "" {
		var err error
		if on, err = date.Parse(c.on); err != nil {
			return fail(fmt.Errorf("bad date: %w", err))
		}
	}
	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	holdings, err := t.Holdings(on)
	if err != nil {
		return fail(err)
	}
	if len(holdings) == 0 {
		fmt.Println("Nothing held.")
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	b.WriteString("# Holdings\n\n")
	b.WriteString("| Product | Qty | Price | Priced On | Value |\n")
	b.WriteString("|---|--:|--:|---|--:|\n")
	for _, h := range holdings {
		priced := ""
		if !h.PriceDate.IsZero() {
			priced = h.PriceDate.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", h.Name, h.Quantity, h.Price, priced, h.Value)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
