// Package cmd implements the CLI application to manage a collection.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/tcgcsv"
)

// Register the subcommands.
// A main package calls Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&openCmd{}, "transactions")
	c.Register(&tradeCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")

	c.Register(&updateCmd{}, "prices")
	c.Register(&rebuildCmd{}, "prices")

	c.Register(&holdingsCmd{}, "reports")
	c.Register(&dailyCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to a YAML or JSON config file")
var dataDir = flag.String("data-dir", "", "Override the data directory")
var verbose = flag.Bool("v", false, "Enable debug logging")

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func loadConfig() (tracker.Config, error) {
	cfg := tracker.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = tracker.LoadConfig(*configFile); err != nil {
			return cfg, err
		}
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	return cfg, nil
}

// openTracker loads the tracker with a tcgcsv price source.
func openTracker() (*tracker.Tracker, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger()
	source := tcgcsv.New(cfg.ArchiveBaseURL, filepath.Join(cfg.DataDir, "archives"), log)
	return tracker.Open(cfg, source, log)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// fail prints an error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// itemsFlag collects repeated -i category/group/product:quantity values.
type itemsFlag []tracker.Item

func (i *itemsFlag) String() string {
	parts := make([]string, 0, len(*i))
	for _, it := range *i {
		parts = append(parts, fmt.Sprintf("%s:%s", it.Key, it.Quantity))
	}
	return strings.Join(parts, ",")
}

func (i *itemsFlag) Set(v string) error {
	keyStr, qtyStr, found := strings.Cut(v, ":")
	qty := decimal.NewFromInt(1)
	if found {
		var err error
		// quantities may be fractional, half a sealed box is a valid lot.
		if qty, err = decimal.NewFromString(qtyStr); err != nil {
			return fmt.Errorf("bad quantity in %q: %w", v, err)
		}
	}
	key, err := tracker.ParseProductKey(keyStr)
	if err != nil {
		return err
	}
	*i = append(*i, tracker.Item{Key: key, Quantity: tracker.Q(qty)})
	return nil
}
