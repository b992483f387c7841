package prices

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/tsiemens/cgt/date"
	decimal_opt "github.com/tsiemens/cgt/decimal_value"
	"github.com/tsiemens/cgt/log"
	"github.com/tsiemens/cgt/util"
)

// How far before a date to look for a close, to step over weekends and
// public holidays.
const maxLookbackDays = 7

// PriceLoader looks up closing prices, fetching each symbol's prices a year at
// a time. Fetched years are kept in memory for the life of the loader and
// written to Cache.
type PriceLoader struct {
	Source        PriceSource
	Cache         PricesCache
	SymbolSuffix  string
	ForceDownload bool
	Concurrency   int
	ErrPrinter    log.ErrorPrinter

	yearPrices *cache.Cache
}

func NewPriceLoader(
	source PriceSource, pricesCache PricesCache, symbolSuffix string,
	forceDownload bool, concurrency int, errPrinter log.ErrorPrinter) *PriceLoader {

	return &PriceLoader{
		Source:        source,
		Cache:         pricesCache,
		SymbolSuffix:  symbolSuffix,
		ForceDownload: forceDownload,
		Concurrency:   concurrency,
		ErrPrinter:    errPrinter,
		yearPrices:    cache.New(cache.NoExpiration, 0),
	}
}

// Symbol is the provider symbol of a security (eg. VAS -> VAS.AX).
func (l *PriceLoader) Symbol(security string) string {
	sym := strings.ToUpper(security)
	if l.SymbolSuffix == "" || strings.HasSuffix(sym, strings.ToUpper(l.SymbolSuffix)) {
		return sym
	}
	return sym + l.SymbolSuffix
}

// A year of prices is only complete once it is over. Partial years are not
// written to the cache, so they are fetched again next run.
func isCompleteYear(year uint32) bool {
	return int(year) < date.Today().Year()
}

func (l *PriceLoader) getYearPrices(symbol string, year uint32) (map[date.Date]DailyPrice, error) {
	key := cacheKey(symbol, year)
	if memo, ok := l.yearPrices.Get(key); ok {
		return memo.(map[date.Date]DailyPrice), nil
	}

	var prices []DailyPrice
	var err error
	if !l.ForceDownload && l.Cache != nil {
		prices, err = l.Cache.GetPrices(symbol, year)
		if err != nil {
			l.ErrPrinter.Ln("Error getting cached prices:", err, "\nTrying to get from remote.")
			prices = nil
		}
	}
	if prices == nil {
		l.ErrPrinter.F("Fetching %s prices for %d\n", symbol, year)
		prices, err = l.Source.GetYearPrices(symbol, year)
		if err != nil {
			return nil, err
		}
		if l.Cache != nil && isCompleteYear(year) {
			if err := l.Cache.WritePrices(symbol, year, prices); err != nil {
				l.ErrPrinter.Ln("Failed to update price cache:", err)
			}
		}
	}

	byDate := make(map[date.Date]DailyPrice, len(prices))
	for _, p := range prices {
		byDate[p.Date] = p
	}
	l.yearPrices.Set(key, byDate, cache.NoExpiration)
	return byDate, nil
}

// GetClose returns the close of security on d, or on the nearest trading day
// before d, looking back at most maxLookbackDays.
func (l *PriceLoader) GetClose(security string, d date.Date) (DailyPrice, error) {
	symbol := l.Symbol(security)
	for i := 0; i <= maxLookbackDays; i++ {
		day := d.AddDays(-i)
		yearPrices, err := l.getYearPrices(symbol, uint32(day.Year()))
		if err != nil {
			return DailyPrice{}, err
		}
		if p, ok := yearPrices[day]; ok {
			log.Tracef("prices", "%s close for %s: %v", symbol, d, p)
			return p, nil
		}
	}
	return DailyPrice{}, fmt.Errorf("No close price found for %s in the %d days up to %s",
		symbol, maxLookbackDays, d)
}

// GetCloses looks up the close of every security on d concurrently. A
// security whose price cannot be found maps to a null value, and its error is
// printed rather than returned, so one missing price does not prevent
// valuing the rest. Only cancellation of ctx is returned as an error.
func (l *PriceLoader) GetCloses(
	ctx context.Context, securities []string, d date.Date) (map[string]decimal_opt.DecimalOpt, error) {

	var mu sync.Mutex
	out := make(map[string]decimal_opt.DecimalOpt, len(securities))

	// Each security is fetched once, even if listed more than once.
	seen := util.NewSet[string]()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Concurrency, 1))
	for _, sec := range securities {
		sec := sec
		if seen.Has(sec) {
			continue
		}
		seen.Add(sec)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			val := decimal_opt.Null
			p, err := l.GetClose(sec, d)
			if err != nil {
				l.ErrPrinter.Ln("Warning:", err)
			} else {
				val = decimal_opt.New(p.Close)
			}
			mu.Lock()
			out[sec] = val
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
