package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsiemens/cgt/date"
)

func TestTaxYear(t *testing.T) {
	rq := require.New(t)

	fy := NewTaxYear(2025)
	rq.Equal(date.New(2024, time.July, 1), fy.Start())
	rq.Equal(date.New(2025, time.June, 30), fy.End())
	rq.Equal("1 Jul 2024 - 30 Jun 2025", fy.String())

	rq.True(fy.Contains(date.New(2024, time.July, 1)))
	rq.True(fy.Contains(date.New(2025, time.June, 30)))
	rq.False(fy.Contains(date.New(2024, time.June, 30)))
	rq.False(fy.Contains(date.New(2025, time.July, 1)))
}

func TestCalendarYear(t *testing.T) {
	rq := require.New(t)

	fy := NewCalendarYear(2024)
	rq.Equal(date.New(2024, time.January, 1), fy.Start())
	rq.Equal(date.New(2024, time.December, 31), fy.End())
	rq.True(fy.Contains(date.New(2024, time.February, 29)))
	rq.False(fy.Contains(date.New(2025, time.January, 1)))

	// A zero start month behaves as January
	rq.Equal(fy.Start(), FiscalYear{EndYear: 2024}.Start())
}

func TestFiscalYearOf(t *testing.T) {
	rq := require.New(t)

	rq.Equal(2025, FiscalYearOf(date.New(2024, time.July, 1), time.July))
	rq.Equal(2024, FiscalYearOf(date.New(2024, time.June, 30), time.July))
	rq.Equal(2024, FiscalYearOf(date.New(2024, time.December, 31), time.January))
	rq.Equal(2025, FiscalYearOf(date.New(2025, time.January, 1), time.January))

	for _, d := range []date.Date{
		date.New(2023, time.July, 1), date.New(2024, time.March, 10), date.New(2024, time.June, 30)} {
		rq.True(NewTaxYear(FiscalYearOf(d, TaxYearStartMonth)).Contains(d), d.String())
	}
}

func TestDateRange(t *testing.T) {
	rq := require.New(t)

	r := DateRange{From: mkDate(10), To: mkDate(20)}
	rq.False(r.Contains(mkDate(9)))
	rq.True(r.Contains(mkDate(10)))
	rq.True(r.Contains(mkDate(20)))
	rq.False(r.Contains(mkDate(21)))
	rq.Equal("2020-01-11 - 2020-01-21", r.String())

	open := DateRange{}
	rq.True(open.Contains(mkDate(-10000)))
	rq.Equal("inception - present", open.String())
}

func TestFilterSales(t *testing.T) {
	rq := require.New(t)

	records := []*SaleRecord{
		{SoldDate: date.New(2024, time.June, 30)},
		{SoldDate: date.New(2024, time.July, 1)},
		{SoldDate: date.New(2025, time.June, 30)},
		{SoldDate: date.New(2025, time.July, 1)},
	}
	rq.Equal(records[1:3], FilterSales(records, NewTaxYear(2025)))
	rq.Equal(records, FilterSales(records, nil))
	rq.Len(FilterSales(records, NewTaxYear(2030)), 0)

	in := txs(
		TTx{Date: date.New(2024, time.June, 30), Act: BUY},
		TTx{Date: date.New(2024, time.July, 1), Act: BUY},
	)
	rq.Equal(in[1:], FilterTxs(in, NewTaxYear(2025)))
	rq.Equal(in, FilterTxs(in, nil))
}
