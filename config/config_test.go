package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	rq := require.New(t)

	path := writeTempFile(t, `
base_path: /home/me/trades
fiscal_year_start_month: 1
prices:
  url: http://localhost:9999
  symbol_suffix: none
  timeout: 5s
  concurrency: 2
`)
	cfg, err := Load(path)
	rq.NoError(err)
	rq.Equal("/home/me/trades", cfg.BasePath)
	rq.Equal(time.January, cfg.StartMonth())
	rq.Equal(5*time.Second, cfg.Prices.Timeout)
	rq.Equal(2, cfg.Prices.Concurrency)
	// Defaults are not applied by Load
	rq.Equal("", cfg.DateFormat)
	rq.Equal("none", cfg.Prices.SymbolSuffix)
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	rq := require.New(t)
	t.Setenv("TEST_CGT_CACHE", "/tmp/cgt-cache")

	path := writeTempFile(t, "prices:\n  cache_dir: ${TEST_CGT_CACHE}/prices\n")
	cfg, err := Load(path)
	rq.NoError(err)
	rq.Equal("/tmp/cgt-cache/prices", cfg.Prices.CacheDir)
}

func TestLoadWithDefaults(t *testing.T) {
	rq := require.New(t)

	cfg, err := LoadWithDefaults(writeTempFile(t, "prices:\n  symbol_suffix: none\n"))
	rq.NoError(err)
	rq.Equal(DefaultBasePath, cfg.BasePath)
	rq.Equal(DefaultDateFormat, cfg.DateFormat)
	rq.Equal(time.July, cfg.StartMonth())
	rq.Equal(DefaultPricesURL, cfg.Prices.URL)
	rq.Equal("", cfg.Prices.SymbolSuffix)
	rq.Equal(DefaultPricesTimeout, cfg.Prices.Timeout)
	rq.Equal(DefaultPricesConcurrency, cfg.Prices.Concurrency)

	rq.Equal(DefaultSymbolSuffix, Default().Prices.SymbolSuffix)
}

func TestValidate(t *testing.T) {
	rq := require.New(t)

	rq.NoError(Default().Validate())

	for _, tc := range []struct {
		name    string
		mutate  func(*Config)
		errText string
	}{
		{"month", func(c *Config) { c.FiscalYearStartMonth = 13 }, "fiscal_year_start_month"},
		{"date format", func(c *Config) { c.DateFormat = "yyyy-mm-dd" }, "date_format"},
		{"url", func(c *Config) { c.Prices.URL = "not a url" }, "prices.url"},
		{"concurrency", func(c *Config) { c.Prices.Concurrency = -1 }, "prices.concurrency"},
	} {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		rq.Error(err, tc.name)
		rq.Contains(err.Error(), tc.errText, tc.name)
	}
}

func TestLoadAndValidate(t *testing.T) {
	rq := require.New(t)

	_, err := LoadAndValidate(writeTempFile(t, "fiscal_year_start_month: 0\nprices:\n  concurrency: -2\n"))
	rq.ErrorContains(err, "validate config: prices.concurrency")

	_, err = LoadAndValidate(writeTempFile(t, "prices: [1, 2]\n"))
	rq.ErrorContains(err, "parse config yaml")
}

func TestLoadOptional(t *testing.T) {
	rq := require.New(t)

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	rq.NoError(err)
	rq.Equal(Default(), cfg)

	cfg, err = LoadOptional("")
	rq.NoError(err)
	rq.Equal(Default(), cfg)

	cfg, err = LoadOptional(writeTempFile(t, "base_path: x\n"))
	rq.NoError(err)
	rq.Equal("x", cfg.BasePath)
}
