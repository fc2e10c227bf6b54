// Package tcgcsv downloads daily price archives from tcgcsv.com and exposes
// them as a price source for the tracker. One archive covers every product
// of every category for a single day, so the client caches extractions per
// date and serves any number of category/group lookups from one download.
package tcgcsv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	tracker "github.com/gauravagarwal003/tcg-tracker"
	"github.com/gauravagarwal003/tcg-tracker/date"
)

// Client fetches and extracts daily archives. It is safe for concurrent use:
// lookups for the same day share a single download.
type Client struct {
	baseURL  string
	cacheDir string
	sevenZip string // path to the 7z binary, archives use PPMd compression
	http     *http.Client
	log      zerolog.Logger

	mu   sync.Mutex
	days map[date.Date]*sync.Once
	errs map[date.Date]error
}

// New returns a client downloading from baseURL and extracting under
// cacheDir. Extraction shells out to the 7z binary found on PATH.
func New(baseURL, cacheDir string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		sevenZip: "7z",
		http:     &http.Client{},
		log:      log.With().Str("component", "tcgcsv").Logger(),
		days:     make(map[date.Date]*sync.Once),
		errs:     make(map[date.Date]error),
	}
}

// archiveURL is the well-known name of one day's archive.
func (c *Client) archiveURL(on date.Date) string {
	return fmt.Sprintf("%s/prices-%s.ppmd.7z", c.baseURL, on)
}

func (c *Client) dayDir(on date.Date) string {
	return filepath.Join(c.cacheDir, on.String())
}

// ensureDay downloads and extracts the archive for a day exactly once. A
// previously extracted day, even from an earlier run, is reused as is.
func (c *Client) ensureDay(ctx context.Context, on date.Date) error {
	c.mu.Lock()
	once, exists := c.days[on]
	if !exists {
		once = &sync.Once{}
		c.days[on] = once
	}
	c.mu.Unlock()

	once.Do(func() {
		err := c.fetchDay(ctx, on)
		c.mu.Lock()
		c.errs[on] = err
		c.mu.Unlock()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[on]
}

func (c *Client) fetchDay(ctx context.Context, on date.Date) error {
	dir := c.dayDir(on)
	if _, err := os.Stat(dir); err == nil {
		return nil // already extracted
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}

	archive := filepath.Join(c.cacheDir, fmt.Sprintf("prices-%s.ppmd.7z", on))
	if _, err := os.Stat(archive); err != nil {
		if err := c.download(ctx, c.archiveURL(on), archive); err != nil {
			return err
		}
	}

	// the PPMd method has no Go decoder, extraction goes through the 7z
	// binary like the upstream tooling expects.
	cmd := exec.CommandContext(ctx, c.sevenZip, "x", "-y", "-o"+c.cacheDir, archive)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("could not extract %s: %w: %s", archive, err, out)
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("archive %s did not contain a %s directory", archive, on)
	}
	c.log.Debug().Stringer("day", on).Msg("archive extracted")
	return os.Remove(archive)
}

func (c *Client) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not download %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(c.cacheDir, "download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// Fetch returns the market price per product id for one category/group on
// one day. Products without a usable market price are absent from the map.
func (c *Client) Fetch(ctx context.Context, on date.Date, category, group string) (map[string]tracker.Money, error) {
	if err := c.ensureDay(ctx, on); err != nil {
		return nil, err
	}
	path := filepath.Join(c.dayDir(on), category, group, "prices")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// the archive simply has no prices for this group that day.
			return map[string]tracker.Money{}, nil
		}
		return nil, err
	}
	return parsePrices(data)
}

// parsePrices extracts {productId, marketPrice} pairs from a price file of
// the form {"results": [...]}. A product can appear once per printing
// variant; the first variant with a market price wins.
func parsePrices(data []byte) (map[string]tracker.Money, error) {
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("could not parse price file: %w", err)
	}
	jval, err := jsonpath.Get("$.results", jobj)
	if err != nil {
		return nil, fmt.Errorf("price file has no results: %w", err)
	}
	results, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("price file results is not a list")
	}

	prices := make(map[string]tracker.Money)
	for _, r := range results {
		entry, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, ok := entry["productId"].(float64)
		if !ok {
			continue
		}
		market, ok := entry["marketPrice"].(float64)
		if !ok || market <= 0 {
			continue
		}
		key := fmt.Sprintf("%d", int64(id))
		if _, seen := prices[key]; !seen {
			prices[key] = tracker.M(market)
		}
	}
	return prices, nil
}
