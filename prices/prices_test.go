package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
)

// 2023-06-29 and 2023-06-30 market opens in Sydney (UTC+10).
const chartJson = `{"chart":{"result":[{
  "meta":{"currency":"AUD","gmtoffset":36000},
  "timestamp":[1687993200,1688079600,1688338800],
  "indicators":{"quote":[{"close":[91.5,92.25,null]}]}
}],"error":null}}`

func mkDate(y uint32, m time.Month, d uint32) date.Date {
	return date.New(y, m, d)
}

type fakeSource struct {
	mu     sync.Mutex
	calls  map[string]int
	prices map[string][]DailyPrice
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: map[string]int{}, prices: map[string][]DailyPrice{}}
}

func (s *fakeSource) GetYearPrices(symbol string, year uint32) ([]DailyPrice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cacheKey(symbol, year)
	s.calls[key]++
	if strings.HasPrefix(symbol, "ERR") {
		return nil, fmt.Errorf("no such symbol %s", symbol)
	}
	return s.prices[key], nil
}

func TestYahooChartSource(t *testing.T) {
	rq := require.New(t)

	var gotPath, gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, chartJson)
	}))
	defer srv.Close()

	src := NewYahooChartSource(srv.URL, "test-agent", time.Second)
	prices, err := src.GetYearPrices("VAS.AX", 2023)
	rq.NoError(err)
	rq.Equal("/v8/finance/chart/VAS.AX", gotPath)
	rq.Contains(gotQuery, "interval=1d")
	rq.Contains(gotQuery, "period1=1672531200")
	rq.Equal("test-agent", gotAgent)

	rq.Len(prices, 2)
	rq.Equal(mkDate(2023, time.June, 29), prices[0].Date)
	rq.True(decimal.RequireFromString("91.5").Equal(prices[0].Close))
	rq.Equal(mkDate(2023, time.June, 30), prices[1].Date)
	rq.True(decimal.RequireFromString("92.25").Equal(prices[1].Close))
}

func TestYahooChartSourceErrors(t *testing.T) {
	rq := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "oops")
	}))
	defer srv.Close()

	src := NewYahooChartSource(srv.URL, "", time.Second)
	_, err := src.GetYearPrices("BAD.AX", 2023)
	rq.ErrorContains(err, "Not Found: No data found")
	_, err = src.GetYearPrices("VAS.AX", 2023)
	rq.ErrorContains(err, "500")
}

func TestCsvPricesCache(t *testing.T) {
	rq := require.New(t)

	c := NewCsvPricesCacheAccessor(t.TempDir(), &log.BufErrorPrinter{})
	prices, err := c.GetPrices("VAS.AX", 2023)
	rq.NoError(err)
	rq.Nil(prices)

	in := []DailyPrice{
		{mkDate(2023, time.June, 29), decimal.RequireFromString("91.5")},
		{mkDate(2023, time.June, 30), decimal.RequireFromString("92.25")},
	}
	rq.NoError(c.WritePrices("VAS.AX", 2023, in))
	prices, err = c.GetPrices("VAS.AX", 2023)
	rq.NoError(err)
	rq.Len(prices, 2)
	rq.Equal(in[1].Date, prices[1].Date)
	rq.True(in[1].Close.Equal(prices[1].Close))

	prices, err = c.GetPrices("VAS.AX", 2022)
	rq.NoError(err)
	rq.Nil(prices)
}

func TestPriceLoaderGetClose(t *testing.T) {
	rq := require.New(t)
	date.TodaysDateForTest = mkDate(2025, time.January, 1)
	defer func() { date.TodaysDateForTest = date.Date{} }()

	src := newFakeSource()
	src.prices[cacheKey("VAS.AX", 2023)] = []DailyPrice{
		{mkDate(2023, time.June, 30), decimal.RequireFromString("92.25")},
	}
	src.prices[cacheKey("VAS.AX", 2024)] = []DailyPrice{
		{mkDate(2024, time.January, 2), decimal.RequireFromString("95")},
	}
	// Suffix already given
	src.prices[cacheKey("IVV.AX", 2023)] = []DailyPrice{
		{mkDate(2023, time.December, 29), decimal.RequireFromString("44")},
	}

	memCache := NewMemPricesCacheAccessor()
	errPrinter := &log.BufErrorPrinter{}
	l := NewPriceLoader(src, memCache, ".AX", false, 2, errPrinter)

	// Saturday -> Friday close
	p, err := l.GetClose("vas", mkDate(2023, time.July, 1))
	rq.NoError(err)
	rq.Equal(mkDate(2023, time.June, 30), p.Date)

	p, err = l.GetClose("VAS", mkDate(2023, time.June, 30))
	rq.NoError(err)
	rq.Equal(mkDate(2023, time.June, 30), p.Date)
	// Memoized
	rq.Equal(1, src.calls[cacheKey("VAS.AX", 2023)])

	// Lookback crossing into the previous year
	p, err = l.GetClose("IVV.AX", mkDate(2024, time.January, 1))
	rq.NoError(err)
	rq.True(decimal.NewFromInt(44).Equal(p.Close))

	_, err = l.GetClose("VAS", mkDate(2023, time.March, 1))
	rq.ErrorContains(err, "No close price found for VAS.AX")

	cached, err := memCache.GetPrices("VAS.AX", 2023)
	rq.NoError(err)
	rq.Len(cached, 1)
	rq.Contains(errPrinter.String(), "Fetching VAS.AX prices for 2023")
}

func TestPriceLoaderUsesCache(t *testing.T) {
	rq := require.New(t)
	date.TodaysDateForTest = mkDate(2025, time.January, 1)
	defer func() { date.TodaysDateForTest = date.Date{} }()

	src := newFakeSource()
	memCache := NewMemPricesCacheAccessor()
	rq.NoError(memCache.WritePrices("VAS.AX", 2023, []DailyPrice{
		{mkDate(2023, time.June, 30), decimal.NewFromInt(1)},
	}))

	l := NewPriceLoader(src, memCache, ".AX", false, 1, &log.BufErrorPrinter{})
	p, err := l.GetClose("VAS", mkDate(2023, time.June, 30))
	rq.NoError(err)
	rq.True(decimal.NewFromInt(1).Equal(p.Close))
	rq.Equal(0, src.calls[cacheKey("VAS.AX", 2023)])

	// Forced downloads skip the cache
	l = NewPriceLoader(src, memCache, ".AX", true, 1, &log.BufErrorPrinter{})
	_, err = l.GetClose("VAS", mkDate(2023, time.June, 30))
	rq.Error(err)
	rq.Equal(1, src.calls[cacheKey("VAS.AX", 2023)])

	// The current year is not complete, so is never cached
	_, _ = l.GetClose("VAS", mkDate(2025, time.January, 1))
	cached, _ := memCache.GetPrices("VAS.AX", 2025)
	rq.Nil(cached)
}

func TestPriceLoaderGetCloses(t *testing.T) {
	rq := require.New(t)

	src := newFakeSource()
	for _, sym := range []string{"AAA.AX", "BBB.AX", "CCC.AX"} {
		src.prices[cacheKey(sym, 2023)] = []DailyPrice{
			{mkDate(2023, time.June, 30), decimal.NewFromInt(int64(sym[0]))},
		}
	}
	errPrinter := &log.BufErrorPrinter{}
	l := NewPriceLoader(src, nil, ".AX", false, 2, errPrinter)

	closes, err := l.GetCloses(context.Background(),
		[]string{"AAA", "BBB", "CCC", "ERR"}, mkDate(2023, time.June, 30))
	rq.NoError(err)
	rq.Len(closes, 4)
	rq.True(decimal.NewFromInt('A').Equal(closes["AAA"].Decimal))
	rq.True(decimal.NewFromInt('C').Equal(closes["CCC"].Decimal))
	rq.True(closes["ERR"].IsNull)
	rq.Contains(errPrinter.String(), "no such symbol ERR.AX")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.GetCloses(ctx, []string{"AAA"}, mkDate(2023, time.June, 30))
	rq.ErrorIs(err, context.Canceled)
}
