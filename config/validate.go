package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.FiscalYearStartMonth < 1 || c.FiscalYearStartMonth > 12 {
		return fmt.Errorf("fiscal_year_start_month must be between 1 and 12, got %d",
			c.FiscalYearStartMonth)
	}

	ref := time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC)
	if parsed, err := time.Parse(c.DateFormat, ref.Format(c.DateFormat)); err != nil || !parsed.Equal(ref) {
		return fmt.Errorf("date_format %q is not a valid date layout", c.DateFormat)
	}

	if err := c.Prices.validate("prices"); err != nil {
		return err
	}
	return nil
}

func (p *PricesConfig) validate(prefix string) error {
	u, err := url.Parse(p.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s.url %q is not a valid URL", prefix, p.URL)
	}
	if p.Timeout < 0 {
		return errors.New(prefix + ".timeout must be >= 0")
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("%s.concurrency must be >= 1", prefix)
	}
	return nil
}
