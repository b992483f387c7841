package prices

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
	"github.com/tsiemens/cgt/log"
)

const chartPathFmt = "%s/v8/finance/chart/%s"

type yahooChartQuote struct {
	// Null on days with no trades
	Close []*float64 `json:"close"`
}

type yahooChartResult struct {
	Meta struct {
		Currency  string `json:"currency"`
		GmtOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooChartQuote `json:"quote"`
	} `json:"indicators"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartRoot struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

// YahooChartSource gets daily closes from the Yahoo Finance chart API.
type YahooChartSource struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewYahooChartSource(baseURL string, userAgent string, timeout time.Duration) *YahooChartSource {
	return &YahooChartSource{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (s *YahooChartSource) yearUrl(symbol string, year uint32) string {
	start := date.New(year, time.January, 1)
	end := date.New(year+1, time.January, 1)
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.UTCTime().Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.UTCTime().Unix()))
	q.Set("interval", "1d")
	return fmt.Sprintf(chartPathFmt, s.BaseURL, url.PathEscape(symbol)) + "?" + q.Encode()
}

// GetYearPrices implements PriceSource.
func (s *YahooChartSource) GetYearPrices(symbol string, year uint32) ([]DailyPrice, error) {
	u := s.yearUrl(symbol, year)
	log.Fverbosef(os.Stderr, "Getting %s\n", u)
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Error getting %s prices: %w", symbol, err)
	}
	defer resp.Body.Close()

	var theJson yahooChartRoot
	decodeErr := json.NewDecoder(resp.Body).Decode(&theJson)
	if theJson.Chart.Error != nil {
		return nil, fmt.Errorf("Error getting %s prices: %s: %s",
			symbol, theJson.Chart.Error.Code, theJson.Chart.Error.Description)
	} else if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Error getting %s prices: status %s", symbol, resp.Status)
	} else if decodeErr != nil {
		return nil, fmt.Errorf("Error decoding %s prices: %w", symbol, decodeErr)
	}
	if len(theJson.Chart.Result) == 0 {
		return nil, nil
	}
	return chartResultToPrices(&theJson.Chart.Result[0]), nil
}

func chartResultToPrices(res *yahooChartResult) []DailyPrice {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	closes := res.Indicators.Quote[0].Close
	prices := make([]DailyPrice, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		// Timestamps are the market open, so shift to the exchange's zone
		// before taking the date.
		tm := time.Unix(ts+res.Meta.GmtOffset, 0).UTC()
		prices = append(prices, DailyPrice{
			Date:  date.NewFromTime(tm),
			Close: decimal.NewFromFloat(*closes[i]).Round(4),
		})
	}
	return prices
}
