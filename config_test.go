package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "data_dir: /tmp/collection\nfetch_workers: 8\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/collection", cfg.DataDir)
	assert.Equal(t, 8, cfg.FetchWorkers)
	// unset fields keep their defaults.
	assert.Equal(t, DefaultConfig().ArchiveBaseURL, cfg.ArchiveBaseURL)
	assert.Equal(t, DefaultConfig().LookbackDays, cfg.LookbackDays)
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"data_dir": "d", "lookback_days": 7}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "d", cfg.DataDir)
	assert.Equal(t, 7, cfg.LookbackDays)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := writeFile(t, "config.yaml", "fetch_workers: 0\n")
	_, err := LoadConfig(path)
	require.Error(t, err)

	path = writeFile(t, "config.toml", "data_dir = 'x'\n")
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func TestConfigPaths(t *testing.T) {
	cfg := Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "transactions.jsonl"), cfg.LedgerFile())
	assert.Equal(t, filepath.Join("data", "prices"), cfg.PricesDir())
	assert.Equal(t, filepath.Join("data", "daily_summary.json"), cfg.SummaryFile())
	assert.Equal(t, filepath.Join("data", "price_gaps.json"), cfg.GapReportFile())
}
