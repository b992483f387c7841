package prices

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
)

func cacheKey(symbol string, year uint32) string {
	return fmt.Sprintf("%s/%d", symbol, year)
}

// MemPricesCacheAccessor is safe for concurrent use.
type MemPricesCacheAccessor struct {
	mu           sync.Mutex
	pricesByYear map[string][]DailyPrice
}

func NewMemPricesCacheAccessor() *MemPricesCacheAccessor {
	return &MemPricesCacheAccessor{pricesByYear: make(map[string][]DailyPrice)}
}

func (c *MemPricesCacheAccessor) WritePrices(symbol string, year uint32, prices []DailyPrice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pricesByYear[cacheKey(symbol, year)] = prices
	return nil
}

func (c *MemPricesCacheAccessor) GetPrices(symbol string, year uint32) ([]DailyPrice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prices, ok := c.pricesByYear[cacheKey(symbol, year)]
	if !ok {
		return nil, nil
	}
	return prices, nil
}

// CsvPricesCacheAccessor keeps one CSV file of date,close rows per symbol and
// year under Dir.
type CsvPricesCacheAccessor struct {
	Dir        string
	ErrPrinter log.ErrorPrinter
}

func NewCsvPricesCacheAccessor(dir string, errPrinter log.ErrorPrinter) *CsvPricesCacheAccessor {
	return &CsvPricesCacheAccessor{Dir: dir, ErrPrinter: errPrinter}
}

func (c *CsvPricesCacheAccessor) pricesCsvPath(symbol string, year uint32) string {
	fname := fmt.Sprintf("prices-%s-%d.csv", symbol, year)
	return filepath.Join(c.Dir, url.QueryEscape(fname))
}

func (c *CsvPricesCacheAccessor) WritePrices(symbol string, year uint32, prices []DailyPrice) (err error) {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return err
	}
	file, err := os.OpenFile(c.pricesCsvPath(symbol, year), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	csvW := csv.NewWriter(file)
	for _, p := range prices {
		if err = csvW.Write([]string{p.Date.String(), p.Close.String()}); err != nil {
			return
		}
	}
	csvW.Flush()
	return csvW.Error()
}

func (c *CsvPricesCacheAccessor) GetPrices(symbol string, year uint32) ([]DailyPrice, error) {
	file, err := os.Open(c.pricesCsvPath(symbol, year))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer file.Close()
	return c.getPricesFromCsv(file)
}

func (c *CsvPricesCacheAccessor) getPricesFromCsv(r io.Reader) ([]DailyPrice, error) {
	csvR := csv.NewReader(r)
	csvR.FieldsPerRecord = 2
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, err
	}

	prices := make([]DailyPrice, 0, len(records))
	for _, record := range records {
		d, err := date.Parse(date.DefaultFormat, record[0])
		if err != nil {
			c.ErrPrinter.Ln("Unable to parse date:", err)
			continue
		}
		close, err := decimal.NewFromString(record[1])
		if err != nil {
			c.ErrPrinter.Ln("Unable to parse price:", err)
			continue
		}
		prices = append(prices, DailyPrice{d, close})
	}
	return prices, nil
}
