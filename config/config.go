// Package config loads the optional cgt YAML config file. Values support
// ${VAR} environment variable substitution, and command line flags override
// whatever the file sets.
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	// Directory holding <year>/*.md trade files.
	BasePath   string `yaml:"base_path"`
	DateFormat string `yaml:"date_format"`
	// 7 for the Australian 1 Jul - 30 Jun income year, 1 for calendar years.
	FiscalYearStartMonth int          `yaml:"fiscal_year_start_month"`
	Prices               PricesConfig `yaml:"prices"`
}

// PricesConfig configures the closing price lookups used to value holdings.
type PricesConfig struct {
	URL string `yaml:"url"`
	// Appended to securities to form the provider symbol (eg. VAS -> VAS.AX).
	// "none" for no suffix.
	SymbolSuffix string        `yaml:"symbol_suffix"`
	Timeout      time.Duration `yaml:"timeout"`
	Concurrency  int           `yaml:"concurrency"`
	CacheDir     string        `yaml:"cache_dir"`
	UserAgent    string        `yaml:"user_agent"`
}

func (c *Config) StartMonth() time.Month {
	return time.Month(c.FiscalYearStartMonth)
}

// DefaultPath is ~/.cgt/config.yaml, or "" if there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultDirName, "config.yaml")
}
