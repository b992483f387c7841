package prices

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/cgt/date"
)

// DailyPrice is the closing price of a security on a trading day.
type DailyPrice struct {
	Date  date.Date
	Close decimal.Decimal
}

func (p DailyPrice) String() string {
	return fmt.Sprintf("%s : %s", p.Date, p.Close)
}

// PriceSource fetches the daily closes of symbol for one calendar year.
type PriceSource interface {
	GetYearPrices(symbol string, year uint32) ([]DailyPrice, error)
}

// PricesCache stores previously fetched years of prices. GetPrices returns
// nil prices with no error when a year is not cached.
type PricesCache interface {
	WritePrices(symbol string, year uint32, prices []DailyPrice) error
	GetPrices(symbol string, year uint32) ([]DailyPrice, error)
}
