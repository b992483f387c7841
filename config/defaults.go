package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDirName              = ".cgt"
	DefaultBasePath             = "trades"
	DefaultDateFormat           = "2006-01-02"
	DefaultFiscalYearStartMonth = 7
	DefaultPricesURL            = "https://query1.finance.yahoo.com"
	DefaultSymbolSuffix         = ".AX"
	NoSymbolSuffix              = "none"
	DefaultPricesTimeout        = 20 * time.Second
	DefaultPricesConcurrency    = 4
	DefaultUserAgent            = "Mozilla/5.0 (X11; Linux x86_64) cgt"
)

func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.DateFormat == "" {
		c.DateFormat = DefaultDateFormat
	}
	if c.FiscalYearStartMonth == 0 {
		c.FiscalYearStartMonth = DefaultFiscalYearStartMonth
	}

	// Prices defaults
	if c.Prices.URL == "" {
		c.Prices.URL = DefaultPricesURL
	}
	if c.Prices.SymbolSuffix == "" {
		c.Prices.SymbolSuffix = DefaultSymbolSuffix
	} else if c.Prices.SymbolSuffix == NoSymbolSuffix {
		c.Prices.SymbolSuffix = ""
	}
	if c.Prices.Timeout == 0 {
		c.Prices.Timeout = DefaultPricesTimeout
	}
	if c.Prices.Concurrency == 0 {
		c.Prices.Concurrency = DefaultPricesConcurrency
	}
	if c.Prices.UserAgent == "" {
		c.Prices.UserAgent = DefaultUserAgent
	}
}
