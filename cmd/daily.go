package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type dailyCmd struct {
	tail int
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "show the derived daily summary" }
func (*dailyCmd) Usage() string {
	return `tcg daily [-tail <n>]

  Shows the day-by-day value, cost basis and item count of the collection.
`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.tail, "tail", 14, "Show only the last N days, 0 for all")
}

func (c *dailyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := openTracker()
	if err != nil {
		return fail(err)
	}
	summary := t.Summary()
	if summary.Len() == 0 {
		fmt.Println("No summary yet, record a transaction and run 'tcg update'.")
		return subcommands.ExitSuccess
	}

	skip := 0
	if c.tail > 0 && summary.Len() > c.tail {
		skip = summary.Len() - c.tail
	}

	var b strings.Builder
	b.WriteString("# Daily Summary\n\n")
	b.WriteString("| Day | Value | Cost Basis | Gain | Items |\n")
	b.WriteString("|---|--:|--:|--:|--:|\n")
	i := 0
	for day, e := range summary.Days().Values() {
		if i < skip {
			i++
			continue
		}
		gain := e.TotalValue.Sub(e.CostBasis)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", day, e.TotalValue, e.CostBasis, gain.SignedString(), e.ItemsOwned)
		i++
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
