package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gauravagarwal003/tcg-tracker/date"
)

// Config carries the tracker's settings. All paths derive from DataDir, so a
// whole collection can be moved or backed up as one directory.
type Config struct {
	// DataDir is the root directory holding the ledger, prices and summary.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// ArchiveBaseURL is the base URL of the daily price archive service.
	ArchiveBaseURL string `yaml:"archive_base_url" json:"archive_base_url"`
	// FetchWorkers bounds concurrent archive downloads.
	FetchWorkers int `yaml:"fetch_workers" json:"fetch_workers"`
	// LookbackDays bounds how far back the holdings view searches for the
	// latest known price of a product.
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`
	// Horizon optionally caps the derivation end date (YYYY-MM-DD).
	// Empty means today.
	Horizon string `yaml:"horizon" json:"horizon"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		DataDir:        "data",
		ArchiveBaseURL: "https://tcgcsv.com/archive/tcgplayer",
		FetchWorkers:   4,
		LookbackDays:   30,
	}
}

// LoadConfig reads a YAML or JSON config file, layering it over the
// defaults. The format follows the file extension.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("fetch_workers must be at least 1, got %d", c.FetchWorkers)
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("lookback_days must be at least 1, got %d", c.LookbackDays)
	}
	if c.Horizon != "" {
		if _, err := date.Parse(c.Horizon); err != nil {
			return fmt.Errorf("bad horizon: %w", err)
		}
	}
	return nil
}

// LedgerFile is the JSONL transaction log.
func (c Config) LedgerFile() string { return filepath.Join(c.DataDir, "transactions.jsonl") }

// PricesDir holds one price series file per product.
func (c Config) PricesDir() string { return filepath.Join(c.DataDir, "prices") }

// SummaryFile is the derived daily summary.
func (c Config) SummaryFile() string { return filepath.Join(c.DataDir, "daily_summary.json") }

// GapReportFile lists days with no recorded market price per product.
func (c Config) GapReportFile() string { return filepath.Join(c.DataDir, "price_gaps.json") }

// CatalogFile maps product ids to display metadata.
func (c Config) CatalogFile() string { return filepath.Join(c.DataDir, "mappings.json") }

// StaleFile is the marker left behind when the ledger changed but the
// summary could not be re-derived. While it exists, only a full
// derivation may replace the summary.
func (c Config) StaleFile() string { return filepath.Join(c.DataDir, "summary.stale") }
